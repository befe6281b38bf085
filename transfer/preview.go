package transfer

import (
	"context"
	"encoding/json"

	"github.com/samuraitruong/guardian/model"
	"github.com/samuraitruong/guardian/service/ledger"
)

// Preview describes an archive before import, including any newer versions
// of the same series discovered on the ledger.
type Preview struct {
	Policy        *model.Policy `json:"policy"`
	NewerVersions []string      `json:"newerVersions,omitempty"`
}

// Anchor is the payload published to a policy's ledger topic on publish.
type Anchor struct {
	UUID      string `json:"uuid"`
	Name      string `json:"name"`
	Version   string `json:"version"`
	Owner     string `json:"owner"`
	ContentID string `json:"cid"`
}

// Inspect parses an archive and, when the policy carries a ledger topic,
// scans the topic history for versions newer than the archived one.
func Inspect(ctx context.Context, archive []byte, log ledger.Service) (*Preview, error) {
	policy, err := Parse(archive)
	if err != nil {
		return nil, err
	}
	preview := &Preview{Policy: policy}
	if policy.TopicID == "" || log == nil {
		return preview, nil
	}
	history, err := log.ReadOrdered(ctx, policy.TopicID)
	if err != nil {
		// an unreadable topic degrades the preview, not the import
		return preview, nil
	}
	for _, message := range history {
		anchor := &Anchor{}
		if err := json.Unmarshal(message.Payload, anchor); err != nil {
			continue
		}
		if anchor.UUID != policy.UUID || anchor.Version == "" {
			continue
		}
		if model.CompareVersions(anchor.Version, policy.Version) > 0 {
			preview.NewerVersions = append(preview.NewerVersions, anchor.Version)
		}
	}
	return preview, nil
}
