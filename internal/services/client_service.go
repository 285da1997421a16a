package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"consultancy_crm_backend/internal/models"
	"consultancy_crm_backend/internal/repositories"

	"github.com/google/uuid"
)

// --- Custom Service Errors for Client ---
var (
	ErrClientNotFound   = errors.New("client not found")
	ErrDuplicateClient  = errors.New("a client with the same name and mobile number already exists")
	ErrClientValidation = errors.New("client data validation error")
)

// ValidationError reports every missing required field, not just the first.
type ValidationError struct {
	MissingFields []string
}

func (e *ValidationError) Error() string {
	return "required fields missing: " + strings.Join(e.MissingFields, ", ")
}

// --- Client DTOs ---

// ClientRequest carries the editable fields for both create and update.
// Update is a full replace: omitted optional fields reset to their defaults.
type ClientRequest struct {
	Name             string  `json:"name"`
	Email            string  `json:"email"`
	Address          string  `json:"address"`
	Mobile           string  `json:"mobile"`
	DOB              string  `json:"dob"`
	BirthTime        string  `json:"birthTime"`
	DOT              string  `json:"dot"`
	ProblemStatement string  `json:"problemStatement"`
	Gender           string  `json:"gender"`
	ChargeableAmount float64 `json:"chargeableAmount"`
	PaidAmount       float64 `json:"paidAmount"`
}

// --- ClientService Interface ---
type ClientService interface {
	CreateClient(ctx context.Context, req ClientRequest) (*models.Client, error)
	GetClientByID(ctx context.Context, id string) (*models.Client, error)
	GetClients(ctx context.Context) ([]models.Client, error)
	UpdateClient(ctx context.Context, id string, req ClientRequest) (*models.Client, error)
	DeleteClient(ctx context.Context, id string) error
	SearchClients(ctx context.Context, criteria models.ClientSearchCriteria) ([]models.Client, error)
}

type clientService struct {
	clientRepo repositories.ClientRepository
}

// NewClientService creates a new instance of ClientService.
func NewClientService(repo repositories.ClientRepository) ClientService {
	return &clientService{clientRepo: repo}
}

// requiredFields maps each required field, in presentation order, to its label.
var requiredFields = []struct {
	label string
	value func(ClientRequest) string
}{
	{"Name", func(r ClientRequest) string { return r.Name }},
	{"Gender", func(r ClientRequest) string { return r.Gender }},
	{"Mobile Number", func(r ClientRequest) string { return r.Mobile }},
	{"Date of Birth", func(r ClientRequest) string { return r.DOB }},
	{"Birth Time", func(r ClientRequest) string { return r.BirthTime }},
	{"Date of Visit", func(r ClientRequest) string { return r.DOT }},
}

func (s *clientService) validateClientData(req ClientRequest) error {
	var missing []string
	for _, f := range requiredFields {
		if strings.TrimSpace(f.value(req)) == "" {
			missing = append(missing, f.label)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{MissingFields: missing}
	}
	if !models.IsValidGender(strings.TrimSpace(req.Gender)) {
		return fmt.Errorf("%w: gender must be one of Male, Female or Other", ErrClientValidation)
	}
	if req.ChargeableAmount < 0 {
		return fmt.Errorf("%w: chargeable amount cannot be negative", ErrClientValidation)
	}
	if req.PaidAmount < 0 {
		return fmt.Errorf("%w: paid amount cannot be negative", ErrClientValidation)
	}
	return nil
}

// normalizeClient maps a request onto a client record: strings trimmed, email
// lower-cased, optional fields defaulting to empty/zero.
func normalizeClient(req ClientRequest) models.Client {
	return models.Client{
		Name:             strings.TrimSpace(req.Name),
		Email:            strings.ToLower(strings.TrimSpace(req.Email)),
		Address:          strings.TrimSpace(req.Address),
		Mobile:           strings.TrimSpace(req.Mobile),
		DOB:              strings.TrimSpace(req.DOB),
		BirthTime:        strings.TrimSpace(req.BirthTime),
		DOT:              strings.TrimSpace(req.DOT),
		ProblemStatement: strings.TrimSpace(req.ProblemStatement),
		Gender:           strings.TrimSpace(req.Gender),
		ChargeableAmount: req.ChargeableAmount,
		PaidAmount:       req.PaidAmount,
	}
}

// checkDuplicate enforces the (name, mobile) uniqueness rule: conjunctive match,
// name compared case-insensitively, excluding excludeID when updating.
func (s *clientService) checkDuplicate(ctx context.Context, name, mobile, excludeID string) error {
	_, err := s.clientRepo.FindByNameMobile(ctx, name, mobile, excludeID)
	if err == nil {
		return ErrDuplicateClient
	}
	if errors.Is(err, repositories.ErrNotFound) {
		return nil
	}
	return fmt.Errorf("failed to check for duplicate client: %w", err)
}

func (s *clientService) CreateClient(ctx context.Context, req ClientRequest) (*models.Client, error) {
	if err := s.validateClientData(req); err != nil {
		return nil, err
	}

	client := normalizeClient(req)
	if err := s.checkDuplicate(ctx, client.Name, client.Mobile, ""); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	client.ID = uuid.NewString()
	client.CreatedAt = now
	client.UpdatedAt = now

	if err := s.clientRepo.Insert(ctx, &client); err != nil {
		// The storage-level unique index can still fire when two writers race
		// past the pre-check.
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrDuplicateClient
		}
		return nil, fmt.Errorf("failed to create client in repository: %w", err)
	}
	return &client, nil
}

func (s *clientService) GetClientByID(ctx context.Context, id string) (*models.Client, error) {
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to get client by id: %w", err)
	}
	return client, nil
}

func (s *clientService) GetClients(ctx context.Context) ([]models.Client, error) {
	clients, err := s.clientRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	return clients, nil
}

func (s *clientService) UpdateClient(ctx context.Context, id string, req ClientRequest) (*models.Client, error) {
	if err := s.validateClientData(req); err != nil {
		return nil, err
	}

	existing, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to find client for update: %w", err)
	}

	client := normalizeClient(req)
	if err := s.checkDuplicate(ctx, client.Name, client.Mobile, id); err != nil {
		return nil, err
	}

	client.ID = existing.ID
	client.CreatedAt = existing.CreatedAt
	client.UpdatedAt = time.Now().UTC()

	if err := s.clientRepo.Replace(ctx, id, &client); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrDuplicateClient
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to update client in repository: %w", err)
	}
	return &client, nil
}

func (s *clientService) DeleteClient(ctx context.Context, id string) error {
	err := s.clientRepo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrClientNotFound
		}
		return fmt.Errorf("failed to delete client: %w", err)
	}
	return nil
}

func (s *clientService) SearchClients(ctx context.Context, criteria models.ClientSearchCriteria) ([]models.Client, error) {
	criteria.Name = strings.TrimSpace(criteria.Name)
	criteria.Mobile = strings.TrimSpace(criteria.Mobile)
	criteria.Gender = strings.TrimSpace(criteria.Gender)
	criteria.Date = strings.TrimSpace(criteria.Date)

	clients, err := s.clientRepo.Search(ctx, criteria)
	if err != nil {
		return nil, fmt.Errorf("failed to search clients: %w", err)
	}
	return clients, nil
}
