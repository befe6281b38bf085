package blocks

import (
	"context"

	"github.com/samuraitruong/guardian/model"
	"github.com/samuraitruong/guardian/runtime/block"
)

// Information is a display-only block: it renders its ui metadata and
// accepts no input.
type Information struct {
	*block.BaseBlock
}

func newInformation() *Information {
	return &Information{BaseBlock: block.NewBase()}
}

// GetData returns the ui metadata verbatim.
func (i *Information) GetData(_ context.Context, _ model.User) (interface{}, error) {
	return map[string]interface{}{
		"id":         i.UUID(),
		"blockType":  i.BlockType(),
		"uiMetaData": i.Options()["uiMetaData"],
	}, nil
}
