// Package transfer packs policies into portable zip archives and unpacks
// them on import. The archive is the unit published to storage and exchanged
// between installations.
package transfer

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/samuraitruong/guardian/model"
)

// ErrInvalidArchive is returned when an archive misses the policy manifest
// or carries one that does not decode.
var ErrInvalidArchive = errors.New("transfer: invalid policy archive")

const manifestName = "policy.json"

// Pack serializes a policy into a zip archive with the policy manifest as
// its single well-known entry.
func Pack(policy *model.Policy) ([]byte, error) {
	if policy == nil {
		return nil, ErrInvalidArchive
	}
	manifest, err := json.MarshalIndent(policy, "", "  ")
	if err != nil {
		return nil, err
	}
	buffer := new(bytes.Buffer)
	writer := zip.NewWriter(buffer)
	entry, err := writer.Create(manifestName)
	if err != nil {
		return nil, err
	}
	if _, err = entry.Write(manifest); err != nil {
		return nil, err
	}
	if err = writer.Close(); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// Parse decodes the policy manifest out of an archive.
func Parse(data []byte) (*model.Policy, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArchive, err)
	}
	for _, entry := range reader.File {
		if entry.Name != manifestName {
			continue
		}
		opened, err := entry.Open()
		if err != nil {
			return nil, err
		}
		defer opened.Close()
		manifest, err := io.ReadAll(opened)
		if err != nil {
			return nil, err
		}
		policy := &model.Policy{}
		if err = json.Unmarshal(manifest, policy); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidArchive, err)
		}
		return policy, nil
	}
	return nil, fmt.Errorf("%w: missing %s", ErrInvalidArchive, manifestName)
}

// Localize turns a parsed policy into a fresh local draft owned by the
// importing user: new series identity, regenerated block ids, no version and
// no ledger anchors carried over.
func Localize(policy *model.Policy, importer model.User) *model.Policy {
	local := policy.Clone()
	local.ID = ""
	local.UUID = ""
	local.Status = model.StatusDraft
	local.Version = ""
	local.PreviousVersion = ""
	local.TopicID = ""
	local.MessageID = ""
	local.Creator = importer.ID
	local.Owner = importer.ID
	local.RegisteredUsers = map[string]model.Role{}
	if local.Config != nil {
		local.Config.RegenerateIDs()
	}
	local.EnsureDefaults()
	return local
}
