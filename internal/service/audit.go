package service

import (
	"fmt"
	"strings"

	"gorm.io/datatypes"

	"github.com/nurpe/salesops-contracts/internal/model"
)

const emptyValue = "(empty)"

// ContractPatch carries the fields an update touches. A nil field is left
// as it is.
type ContractPatch struct {
	ClientName  *string
	ClientEmail *string
	ClientPhone *string
	Status      *model.ContractStatus
	Clauses     *[]string
}

// diffContract compares patch against current and returns the column
// updates plus one human readable line per changed field. Client fields are
// trimmed first and a blank optional field means NULL. Fields present in the
// patch with an unchanged value produce neither.
func diffContract(current *model.Contract, patch ContractPatch) (map[string]interface{}, []string) {
	updates := map[string]interface{}{}
	var changes []string

	if patch.ClientName != nil {
		next := strings.TrimSpace(*patch.ClientName)
		if next != current.ClientName {
			updates["client_name"] = next
			changes = append(changes, describeChange("client_name", current.ClientName, next))
		}
	}
	if patch.ClientEmail != nil {
		next := optional(strings.TrimSpace(*patch.ClientEmail))
		if deref(next) != deref(current.ClientEmail) {
			updates["client_email"] = next
			changes = append(changes, describeChange("client_email", deref(current.ClientEmail), deref(next)))
		}
	}
	if patch.ClientPhone != nil {
		next := optional(strings.TrimSpace(*patch.ClientPhone))
		if deref(next) != deref(current.ClientPhone) {
			updates["client_phone"] = next
			changes = append(changes, describeChange("client_phone", deref(current.ClientPhone), deref(next)))
		}
	}
	if patch.Status != nil && *patch.Status != current.Status {
		updates["status"] = *patch.Status
		changes = append(changes, describeChange("status", string(current.Status), string(*patch.Status)))
	}
	if patch.Clauses != nil && !equalClauses(current.Clauses, *patch.Clauses) {
		clauses := *patch.Clauses
		if clauses == nil {
			clauses = []string{}
		}
		updates["contract_clauses"] = datatypes.JSONSlice[string](clauses)
		changes = append(changes, "contract_clauses: clauses updated")
	}

	return updates, changes
}

// auditAction tags status moves with a lifecycle action; everything else is
// a plain update.
func auditAction(current *model.Contract, patch ContractPatch) string {
	if patch.Status == nil || *patch.Status == current.Status {
		return model.AuditActionContractUpdated
	}
	switch *patch.Status {
	case model.ContractStatusApproved:
		return model.AuditActionContractApproved
	case model.ContractStatusRejected:
		return model.AuditActionContractRejected
	case model.ContractStatusCompleted:
		return model.AuditActionContractCompleted
	default:
		return model.AuditActionContractUpdated
	}
}

func auditDetails(changes []string) string {
	return "Contract updated: " + strings.Join(changes, ", ")
}

func describeChange(field, before, after string) string {
	return fmt.Sprintf("%s: %s → %s", field, displayValue(before), displayValue(after))
}

func displayValue(v string) string {
	if strings.TrimSpace(v) == "" {
		return emptyValue
	}
	return v
}

func equalClauses(current []string, next []string) bool {
	if len(current) != len(next) {
		return false
	}
	for i := range current {
		if current[i] != next[i] {
			return false
		}
	}
	return true
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func optional(v string) *string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return &v
}
