package tree

import (
	"context"
	"errors"

	"github.com/samuraitruong/guardian/model"
	"github.com/samuraitruong/guardian/runtime/validation"
)

// Validate builds a disposable tree for the policy and walks it, collecting
// every structural finding into a report. Nothing durable is touched and the
// candidate policy is not registered; the walk never fails part-way.
func (b *Builder) Validate(ctx context.Context, policy *model.Policy) *validation.Report {
	report := validation.NewReport()
	if policy == nil || policy.Config == nil {
		report.AddBlockError("", "policy has no block tree")
		return report
	}
	for _, tag := range policy.Config.Tags() {
		report.AddTag(tag)
	}
	report.AddPermissions(policy.PolicyRoles)

	root, err := b.Build(ctx, policy, true)
	if err != nil {
		var buildErr *BuildError
		if errors.As(err, &buildErr) {
			report.AddBlockError(buildErr.BlockID, buildErr.Err.Error())
		} else {
			report.AddBlockError("", err.Error())
		}
		return report
	}
	defer root.Destroy()
	root.Validate(ctx, report)
	return report
}
