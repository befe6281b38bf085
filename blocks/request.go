package blocks

import (
	"context"

	"github.com/samuraitruong/guardian/internal/clock"
	"github.com/samuraitruong/guardian/model"
	"github.com/samuraitruong/guardian/runtime/block"
)

// RequestVC collects a document from the user, wraps it in a signed
// credential and advances the enclosing step. The submitted document becomes
// the user's block state.
type RequestVC struct {
	*block.BaseBlock
}

func newRequestVC() *RequestVC {
	return &RequestVC{BaseBlock: block.NewBase()}
}

// GetData returns the input schema reference and ui metadata.
func (r *RequestVC) GetData(_ context.Context, user model.User) (interface{}, error) {
	return map[string]interface{}{
		"id":         r.UUID(),
		"blockType":  r.BlockType(),
		"uiMetaData": r.Options()["uiMetaData"],
		"schema":     r.Options()["schema"],
		"active":     r.IsActive(user),
	}, nil
}

// SetData signs the submitted document, records it as the user's state,
// notifies entitled recipients and advances the enclosing step.
func (r *RequestVC) SetData(ctx context.Context, user model.User, data interface{}) (interface{}, error) {
	payload, ok := asMap(data)
	if !ok {
		return nil, ErrInvalidInput
	}
	document, ok := asMap(payload["document"])
	if !ok {
		document = payload
	}
	token, err := r.Env().Credentials.Sign(ctx, document)
	if err != nil {
		return nil, err
	}
	state := map[string]interface{}{
		"document":  document,
		"token":     token,
		"owner":     user.ID,
		"createdAt": clock.Now().UTC(),
	}
	r.UpdateDataState(user, state)
	r.UpdateBlock(ctx, state, user, r.Tag())
	if err = r.RunNext(ctx, user, state); err != nil {
		return nil, err
	}
	return state, nil
}
