package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/nurpe/salesops-contracts/internal/config"
	"github.com/nurpe/salesops-contracts/internal/model"
	"github.com/nurpe/salesops-contracts/internal/pricing"
	"github.com/nurpe/salesops-contracts/internal/repository"
)

var validate = validator.New()

const (
	retryBaseDelay = 10 * time.Millisecond
	retryMaxDelay  = 200 * time.Millisecond
)

type ContractPDFGenerator interface {
	Generate(doc model.ContractDocument) ([]byte, error)
}

type ContractService struct {
	tx        *repository.Transactor
	contracts *repository.ContractRepository
	clauses   *repository.ClauseRepository
	coupons   *repository.CouponRepository
	users     *repository.UserRepository
	pdf       ContractPDFGenerator
	currency  string
	retries   int
	log       zerolog.Logger
	now       func() time.Time
}

type CreateContractInput struct {
	ClientName  string
	ClientEmail *string
	ClientPhone *string
	PackageID   uuid.UUID
	AddonIDs    []uuid.UUID
	CouponCode  *string
	Principal   model.Principal
}

type UpdateContractInput struct {
	ContractID uuid.UUID
	Patch      ContractPatch
	Principal  model.Principal
}

type ApproveAddonInput struct {
	ContractID uuid.UUID
	AddonID    uuid.UUID
	Principal  model.Principal
}

type FileResult struct {
	FileName string
	Content  []byte
}

func NewContractService(
	tx *repository.Transactor,
	contracts *repository.ContractRepository,
	clauses *repository.ClauseRepository,
	coupons *repository.CouponRepository,
	users *repository.UserRepository,
	pdf ContractPDFGenerator,
	cfg *config.Config,
	log zerolog.Logger,
) *ContractService {
	return &ContractService{
		tx:        tx,
		contracts: contracts,
		clauses:   clauses,
		coupons:   coupons,
		users:     users,
		pdf:       pdf,
		currency:  cfg.Contracts.Currency,
		retries:   cfg.DB.TxRetries,
		log:       log.With().Str("component", "contracts").Logger(),
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// CreateContract compiles the clause snapshot, prices the package with its
// add-ons and coupon, and persists the contract, its add-on links, the coupon
// redemption and the initial audit entry as one transaction. Any failure
// leaves none of them behind.
func (s *ContractService) CreateContract(ctx context.Context, input CreateContractInput) (*model.Contract, error) {
	if !input.Principal.IsAgent() {
		return nil, ErrPermissionDenied
	}
	clientName := strings.TrimSpace(input.ClientName)
	if len([]rune(clientName)) < 2 {
		return nil, fmt.Errorf("%w: client_name must be at least 2 characters", ErrInvalidInput)
	}
	if input.PackageID == uuid.Nil {
		return nil, fmt.Errorf("%w: package_id is required", ErrInvalidInput)
	}
	if err := validateEmail(input.ClientEmail); err != nil {
		return nil, err
	}
	addonIDs := uniqueIDs(input.AddonIDs)
	couponCode := ""
	if input.CouponCode != nil {
		couponCode = strings.TrimSpace(*input.CouponCode)
	}

	var created *model.Contract
	err := s.runInTx(ctx, func(tx *gorm.DB) error {
		contracts := s.contracts.WithTx(tx)
		now := s.now()

		pkg, err := contracts.GetPackage(ctx, input.PackageID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPackageNotFound
			}
			return err
		}

		clauses, err := s.clauses.WithTx(tx).CompileClauses(ctx, pkg.ServiceIDs, pkg.DurationMonths)
		if err != nil {
			return err
		}

		addons, err := contracts.GetAddons(ctx, addonIDs)
		if err != nil {
			return err
		}
		if missing := missingAddons(addonIDs, addons); len(missing) > 0 {
			return fmt.Errorf("%w: %s", ErrAddonNotFound, joinIDs(missing))
		}
		prices := make([]model.Money, 0, len(addons))
		for _, addon := range addons {
			prices = append(prices, addon.Price)
		}

		var discount *model.Money
		if couponCode != "" {
			pct, err := s.coupons.WithTx(tx).Redeem(ctx, couponCode, now)
			if err != nil {
				return couponError(err)
			}
			discount = &pct
		}

		contract := &model.Contract{
			ID:           uuid.New(),
			ClientName:   clientName,
			ClientEmail:  trimOptional(input.ClientEmail),
			ClientPhone:  trimOptional(input.ClientPhone),
			TotalAmount:  pricing.ComputeTotal(pkg.TotalPrice, prices, discount),
			Clauses:      datatypes.JSONSlice[string](clauses),
			Status:       model.ContractStatusPendingReview,
			SalesAgentID: input.Principal.UserID,
			PackageID:    pkg.ID,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if couponCode != "" {
			contract.CouponCode = &couponCode
		}

		links := make([]model.ContractAddon, 0, len(addons))
		views := make([]model.ContractAddonView, 0, len(addons))
		for _, addon := range addons {
			links = append(links, model.ContractAddon{
				ContractID: contract.ID,
				AddonID:    addon.ID,
				IsApproved: false,
			})
			views = append(views, model.ContractAddonView{
				AddonID: addon.ID,
				Name:    addon.Name,
				Price:   addon.Price,
			})
		}

		entry := &model.AuditEntry{
			ContractID: contract.ID,
			UserID:     input.Principal.UserID,
			Action:     model.AuditActionContractCreated,
			Details:    fmt.Sprintf("Contract created for client: %s", clientName),
			CreatedAt:  now,
		}

		if err := contracts.CreateContract(ctx, contract, links, entry); err != nil {
			return err
		}
		contract.Addons = views
		created = contract
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("contract_id", created.ID.String()).
		Str("agent_id", created.SalesAgentID.String()).
		Str("total", created.TotalAmount.String()).
		Int("clauses", len(created.Clauses)).
		Msg("contract created")
	return created, nil
}

// UpdateContract applies the fields present in the patch and appends one
// audit entry describing them, in the same transaction. A patch that changes
// nothing writes nothing.
func (s *ContractService) UpdateContract(ctx context.Context, input UpdateContractInput) (*model.Contract, error) {
	if !input.Principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	if err := validatePatch(input.Patch); err != nil {
		return nil, err
	}

	var result *model.Contract
	err := s.runInTx(ctx, func(tx *gorm.DB) error {
		contracts := s.contracts.WithTx(tx)

		current, err := contracts.LockContract(ctx, input.ContractID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrContractNotFound
			}
			return err
		}

		updates, changes := diffContract(current, input.Patch)
		if len(changes) > 0 {
			now := s.now()
			updates["updated_at"] = now
			if err := contracts.UpdateContract(ctx, current.ID, updates); err != nil {
				return err
			}
			entry := &model.AuditEntry{
				ContractID: current.ID,
				UserID:     input.Principal.UserID,
				Action:     auditAction(current, input.Patch),
				Details:    auditDetails(changes),
				CreatedAt:  now,
			}
			if err := contracts.AppendAuditEntry(ctx, entry); err != nil {
				return err
			}
		}

		result, err = contracts.GetContract(ctx, current.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ApproveAddon marks one add-on link approved. Approving an already approved
// add-on is a no-op and is not audited.
func (s *ContractService) ApproveAddon(ctx context.Context, input ApproveAddonInput) (*model.Contract, error) {
	if !input.Principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}

	var result *model.Contract
	err := s.runInTx(ctx, func(tx *gorm.DB) error {
		contracts := s.contracts.WithTx(tx)

		contract, err := contracts.LockContract(ctx, input.ContractID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrContractNotFound
			}
			return err
		}
		if _, err := contracts.GetContractAddon(ctx, contract.ID, input.AddonID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAddonNotFound
			}
			return err
		}

		now := s.now()
		approved, err := contracts.ApproveContractAddon(ctx, contract.ID, input.AddonID, input.Principal.UserID, now)
		if err != nil {
			return err
		}
		if approved {
			addons, err := contracts.GetAddons(ctx, []uuid.UUID{input.AddonID})
			if err != nil {
				return err
			}
			if len(addons) != 1 {
				return ErrAddonNotFound
			}
			entry := &model.AuditEntry{
				ContractID: contract.ID,
				UserID:     input.Principal.UserID,
				Action:     model.AuditActionAddonApproved,
				Details:    fmt.Sprintf("Add-on approved: %s", addons[0].Name),
				CreatedAt:  now,
			}
			if err := contracts.AppendAuditEntry(ctx, entry); err != nil {
				return err
			}
		}

		result, err = contracts.GetContract(ctx, contract.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *ContractService) ListContracts(ctx context.Context, principal model.Principal) ([]model.Contract, error) {
	switch {
	case principal.IsAdmin():
		return s.contracts.ListContracts(ctx, nil)
	case principal.IsAgent():
		agentID := principal.UserID
		return s.contracts.ListContracts(ctx, &agentID)
	default:
		return nil, ErrPermissionDenied
	}
}

func (s *ContractService) GetContract(ctx context.Context, id uuid.UUID, principal model.Principal) (*model.Contract, error) {
	contract, err := s.contracts.GetContract(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContractNotFound
		}
		return nil, err
	}
	if !canRead(principal, contract) {
		return nil, ErrPermissionDenied
	}
	return contract, nil
}

// ListAuditEntries returns the contract history newest first.
func (s *ContractService) ListAuditEntries(ctx context.Context, contractID uuid.UUID, principal model.Principal) ([]model.AuditEntry, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	if _, err := s.contracts.GetContract(ctx, contractID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContractNotFound
		}
		return nil, err
	}
	return s.contracts.ListAuditEntries(ctx, contractID)
}

func (s *ContractService) RenderContractPDF(ctx context.Context, id uuid.UUID, principal model.Principal) (*FileResult, error) {
	contract, err := s.GetContract(ctx, id, principal)
	if err != nil {
		return nil, err
	}
	pkg, err := s.contracts.GetPackage(ctx, contract.PackageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPackageNotFound
		}
		return nil, err
	}
	doc := model.ContractDocument{
		Contract: *contract,
		Package:  *pkg,
		Currency: s.currency,
	}
	if agent, err := s.users.GetUser(ctx, contract.SalesAgentID); err == nil {
		doc.AgentName = agent.Name
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	content, err := s.pdf.Generate(doc)
	if err != nil {
		return nil, err
	}
	return &FileResult{
		FileName: fmt.Sprintf("contract-%s.pdf", contract.ID.String()),
		Content:  content,
	}, nil
}

// runInTx executes fn in one transaction, replaying it when the database
// reports a serialization conflict. Errors that are not part of the domain
// taxonomy come back wrapped in ErrTransactionFailure.
func (s *ContractService) runInTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	var err error
	for attempt := 0; attempt <= s.retries; attempt++ {
		err = s.tx.Run(ctx, fn)
		if err == nil {
			return nil
		}
		if !repository.IsSerializationFailure(err) || ctx.Err() != nil || attempt == s.retries {
			break
		}
		s.log.Warn().Err(err).Int("attempt", attempt+1).Msg("transaction conflict, retrying")
		if waitErr := sleepCtx(ctx, retryDelay(attempt)); waitErr != nil {
			break
		}
	}
	if isDomainError(err) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrTransactionFailure, err)
}

// retryDelay doubles from retryBaseDelay up to retryMaxDelay and adds up to
// half of that again as jitter so that conflicting requests spread out.
func retryDelay(attempt int) time.Duration {
	delay := retryBaseDelay << attempt
	if delay <= 0 || delay > retryMaxDelay {
		delay = retryMaxDelay
	}
	return delay + rand.N(delay/2+1)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func validatePatch(patch ContractPatch) error {
	if patch.ClientName != nil && len([]rune(strings.TrimSpace(*patch.ClientName))) < 2 {
		return fmt.Errorf("%w: client_name must be at least 2 characters", ErrInvalidInput)
	}
	if err := validateEmail(patch.ClientEmail); err != nil {
		return err
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, *patch.Status)
	}
	return nil
}

// validateEmail accepts nil or blank, which clears the field on update.
func validateEmail(email *string) error {
	if email == nil {
		return nil
	}
	value := strings.TrimSpace(*email)
	if value == "" {
		return nil
	}
	if err := validate.Var(value, "email"); err != nil {
		return fmt.Errorf("%w: client_email must be a valid email", ErrInvalidInput)
	}
	return nil
}

func canRead(principal model.Principal, contract *model.Contract) bool {
	if principal.IsAdmin() {
		return true
	}
	return principal.IsAgent() && contract.SalesAgentID == principal.UserID
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	result := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}

func missingAddons(requested []uuid.UUID, found []model.Addon) []uuid.UUID {
	index := make(map[uuid.UUID]struct{}, len(found))
	for _, addon := range found {
		index[addon.ID] = struct{}{}
	}
	var missing []uuid.UUID
	for _, id := range requested {
		if _, ok := index[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

func joinIDs(ids []uuid.UUID) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, id.String())
	}
	return strings.Join(parts, ", ")
}

func trimOptional(v *string) *string {
	if v == nil {
		return nil
	}
	return optional(strings.TrimSpace(*v))
}
