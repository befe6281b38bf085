package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/samuraitruong/guardian/model"
)

func TestReport_DuplicateTagReportedOnce(t *testing.T) {
	report := NewReport()
	report.AddTag("step1")
	report.AddTag("step1")

	assert.False(t, report.RegisterBlock("b1", "step1"))
	assert.True(t, report.RegisterBlock("b2", "step1"))

	report.AddBlockErrorf("b2", "tag %s already exists", "step1")
	assert.False(t, report.IsValid())
	assert.Len(t, report.Errors(), 1)
}

func TestReport_UntaggedBlocksNeverCollide(t *testing.T) {
	report := NewReport()
	assert.False(t, report.RegisterBlock("b1", ""))
	assert.False(t, report.RegisterBlock("b2", ""))
	assert.True(t, report.IsValid())
}

func TestReport_PermissionNotDeclared(t *testing.T) {
	report := NewReport()
	report.AddPermissions([]model.Role{"Issuer", "Auditor"})

	_, missing := report.PermissionNotDeclared([]model.Role{"Issuer", model.AnyRole, model.OwnerRole, model.NoRole})
	assert.False(t, missing)

	role, missing := report.PermissionNotDeclared([]model.Role{"Issuer", "Registrant"})
	assert.True(t, missing)
	assert.Equal(t, model.Role("Registrant"), role)
}
