package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nurpe/salesops-contracts/internal/model"
)

type ContractRepository struct {
	db *gorm.DB
}

func NewContractRepository(db *gorm.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

func (r *ContractRepository) WithTx(tx *gorm.DB) *ContractRepository {
	return &ContractRepository{db: tx}
}

// GetPackage loads a package together with its service ids in package order.
func (r *ContractRepository) GetPackage(ctx context.Context, id uuid.UUID) (*model.Package, error) {
	var pkg model.Package
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&pkg).Error; err != nil {
		return nil, err
	}

	var serviceIDs []uuid.UUID
	err := r.db.WithContext(ctx).Raw(`
		SELECT service_id
		FROM package_services
		WHERE package_id = ?
		ORDER BY position ASC, service_id ASC
	`, id).Scan(&serviceIDs).Error
	if err != nil {
		return nil, err
	}
	pkg.ServiceIDs = serviceIDs
	return &pkg, nil
}

func (r *ContractRepository) GetAddons(ctx context.Context, ids []uuid.UUID) ([]model.Addon, error) {
	addons := []model.Addon{}
	if len(ids) == 0 {
		return addons, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&addons).Error; err != nil {
		return nil, err
	}
	return addons, nil
}

// CreateContract inserts the contract row, its add-on links and the initial
// audit entry. Callers wrap it in a transaction together with the coupon
// redemption.
func (r *ContractRepository) CreateContract(ctx context.Context, contract *model.Contract, links []model.ContractAddon, entry *model.AuditEntry) error {
	db := r.db.WithContext(ctx)
	if err := db.Create(contract).Error; err != nil {
		return err
	}
	if len(links) > 0 {
		if err := db.Create(&links).Error; err != nil {
			return err
		}
	}
	return db.Create(entry).Error
}

func (r *ContractRepository) GetContract(ctx context.Context, id uuid.UUID) (*model.Contract, error) {
	var contract model.Contract
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&contract).Error; err != nil {
		return nil, err
	}
	addons, err := r.listAddonViews(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	contract.Addons = addons[id]
	return &contract, nil
}

// LockContract reads the contract row with FOR UPDATE so that concurrent
// writers to the same contract, and their audit entries, are serialized.
func (r *ContractRepository) LockContract(ctx context.Context, id uuid.UUID) (*model.Contract, error) {
	var contract model.Contract
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		Take(&contract).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *ContractRepository) UpdateContract(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&model.Contract{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// ListContracts returns contracts newest first, ties broken by id descending
// like the audit list. A nil agentID lists every contract.
func (r *ContractRepository) ListContracts(ctx context.Context, agentID *uuid.UUID) ([]model.Contract, error) {
	query := r.db.WithContext(ctx).Model(&model.Contract{})
	if agentID != nil {
		query = query.Where("sales_agent_id = ?", *agentID)
	}

	var contracts []model.Contract
	if err := query.Order("created_at DESC").Order("id DESC").Find(&contracts).Error; err != nil {
		return nil, err
	}
	if len(contracts) == 0 {
		return contracts, nil
	}

	ids := make([]uuid.UUID, 0, len(contracts))
	for _, c := range contracts {
		ids = append(ids, c.ID)
	}
	addons, err := r.listAddonViews(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range contracts {
		contracts[i].Addons = addons[contracts[i].ID]
	}
	return contracts, nil
}

func (r *ContractRepository) listAddonViews(ctx context.Context, contractIDs []uuid.UUID) (map[uuid.UUID][]model.ContractAddonView, error) {
	var rows []struct {
		ContractID uuid.UUID
		AddonID    uuid.UUID
		Name       string
		Price      model.Money
		IsApproved bool
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			ca.contract_id,
			ca.addon_id,
			a.name,
			a.price,
			ca.is_approved
		FROM contract_addons ca
		JOIN addons a ON a.id = ca.addon_id
		WHERE ca.contract_id IN ?
		ORDER BY a.name ASC, ca.addon_id ASC
	`, contractIDs).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make(map[uuid.UUID][]model.ContractAddonView, len(contractIDs))
	for _, row := range rows {
		result[row.ContractID] = append(result[row.ContractID], model.ContractAddonView{
			AddonID:    row.AddonID,
			Name:       row.Name,
			Price:      row.Price,
			IsApproved: row.IsApproved,
		})
	}
	return result, nil
}

func (r *ContractRepository) GetContractAddon(ctx context.Context, contractID, addonID uuid.UUID) (*model.ContractAddon, error) {
	var link model.ContractAddon
	err := r.db.WithContext(ctx).
		Where("contract_id = ? AND addon_id = ?", contractID, addonID).
		Take(&link).Error
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// ApproveContractAddon flips is_approved only while it is still false and
// reports whether this call did the flip.
func (r *ContractRepository) ApproveContractAddon(ctx context.Context, contractID, addonID, approverID uuid.UUID, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.ContractAddon{}).
		Where("contract_id = ? AND addon_id = ? AND is_approved = ?", contractID, addonID, false).
		Updates(map[string]interface{}{
			"is_approved": true,
			"approved_by": approverID,
			"approved_at": at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *ContractRepository) AppendAuditEntry(ctx context.Context, entry *model.AuditEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListAuditEntries returns a contract's history newest first. Entries that
// share a timestamp keep their insertion order through the id tiebreak.
func (r *ContractRepository) ListAuditEntries(ctx context.Context, contractID uuid.UUID) ([]model.AuditEntry, error) {
	entries := []model.AuditEntry{}
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			l.id,
			l.contract_id,
			l.user_id,
			l.action,
			l.details,
			l.created_at,
			COALESCE(u.name, '') AS user_name
		FROM contract_audit_logs l
		LEFT JOIN users u ON u.id = l.user_id
		WHERE l.contract_id = ?
		ORDER BY l.created_at DESC, l.id DESC
	`, contractID).Scan(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
