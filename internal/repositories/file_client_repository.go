package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"consultancy_crm_backend/internal/models"
)

// fileClientRepository is the flat-file store variant: a single JSON array of
// client objects at a fixed path, rewritten atomically (write-temp-then-rename)
// on every mutation. All access is serialized behind a mutex, which also closes
// the duplicate-guard race for in-process writers.
type fileClientRepository struct {
	mu   sync.Mutex
	path string
}

// NewFileClientRepository creates a ClientRepository backed by a JSON file at path.
func NewFileClientRepository(path string) ClientRepository {
	return &fileClientRepository{path: path}
}

func (r *fileClientRepository) load() ([]models.Client, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []models.Client{}, nil
		}
		return nil, fmt.Errorf("%w: reading %s: %v", ErrDatabaseError, r.path, err)
	}
	clients := []models.Client{}
	if err := json.Unmarshal(data, &clients); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrDatabaseError, r.path, err)
	}
	return clients, nil
}

func (r *fileClientRepository) save(clients []models.Client) error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("%w: creating data directory: %v", ErrDatabaseError, err)
	}
	data, err := json.MarshalIndent(clients, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encoding clients: %v", ErrDatabaseError, err)
	}
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("%w: writing %s: %v", ErrDatabaseError, tmp, err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("%w: replacing %s: %v", ErrDatabaseError, r.path, err)
	}
	return nil
}

func sortNewestFirst(clients []models.Client) {
	sort.SliceStable(clients, func(i, j int) bool {
		return clients[i].CreatedAt.After(clients[j].CreatedAt)
	})
}

func (r *fileClientRepository) List(_ context.Context) ([]models.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clients, err := r.load()
	if err != nil {
		return nil, err
	}
	sortNewestFirst(clients)
	return clients, nil
}

func (r *fileClientRepository) GetByID(_ context.Context, id string) (*models.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clients, err := r.load()
	if err != nil {
		return nil, err
	}
	for i := range clients {
		if clients[i].ID == id {
			return &clients[i], nil
		}
	}
	return nil, ErrNotFound
}

func (r *fileClientRepository) Insert(_ context.Context, client *models.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clients, err := r.load()
	if err != nil {
		return err
	}
	for i := range clients {
		if clients[i].ID == client.ID {
			return fmt.Errorf("%w: id %s already exists", ErrDuplicateKey, client.ID)
		}
		if strings.EqualFold(clients[i].Name, client.Name) && clients[i].Mobile == client.Mobile {
			return fmt.Errorf("%w: (name, mobile) pair already exists", ErrDuplicateKey)
		}
	}
	clients = append(clients, *client)
	return r.save(clients)
}

func (r *fileClientRepository) Replace(_ context.Context, id string, client *models.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clients, err := r.load()
	if err != nil {
		return err
	}
	index := -1
	for i := range clients {
		if clients[i].ID == id {
			index = i
			continue
		}
		if strings.EqualFold(clients[i].Name, client.Name) && clients[i].Mobile == client.Mobile {
			return fmt.Errorf("%w: (name, mobile) pair already exists", ErrDuplicateKey)
		}
	}
	if index < 0 {
		return ErrNotFound
	}
	clients[index] = *client
	return r.save(clients)
}

func (r *fileClientRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clients, err := r.load()
	if err != nil {
		return err
	}
	for i := range clients {
		if clients[i].ID == id {
			clients = append(clients[:i], clients[i+1:]...)
			return r.save(clients)
		}
	}
	return ErrNotFound
}

func (r *fileClientRepository) Search(_ context.Context, criteria models.ClientSearchCriteria) ([]models.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clients, err := r.load()
	if err != nil {
		return nil, err
	}

	matched := []models.Client{}
	for _, c := range clients {
		if criteria.Name != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(criteria.Name)) {
			continue
		}
		if criteria.Mobile != "" && !strings.Contains(strings.ToLower(c.Mobile), strings.ToLower(criteria.Mobile)) {
			continue
		}
		if criteria.Gender != "" && c.Gender != criteria.Gender {
			continue
		}
		if criteria.Date != "" && c.DOB != criteria.Date && c.DOT != criteria.Date {
			continue
		}
		matched = append(matched, c)
	}
	sortNewestFirst(matched)
	return matched, nil
}

func (r *fileClientRepository) FindByNameMobile(_ context.Context, name, mobile, excludeID string) (*models.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clients, err := r.load()
	if err != nil {
		return nil, err
	}
	for i := range clients {
		if excludeID != "" && clients[i].ID == excludeID {
			continue
		}
		if strings.EqualFold(clients[i].Name, name) && clients[i].Mobile == mobile {
			return &clients[i], nil
		}
	}
	return nil, ErrNotFound
}
