package setting

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/frahmantamala/grafana-sync/internal"
	settingDatamodel "github.com/frahmantamala/grafana-sync/internal/core/datamodel/setting"
	"github.com/frahmantamala/grafana-sync/pkg/crypto"
)

type RepositoryAPI interface {
	Get(ctx context.Context, key string) (*settingDatamodel.Setting, error)
	List(ctx context.Context) ([]*settingDatamodel.Setting, error)
	ListByPrefix(ctx context.Context, prefix string) ([]*settingDatamodel.Setting, error)
	Upsert(ctx context.Context, key, value string) (*settingDatamodel.Setting, error)
}

// Cipher seals secret values before they reach the repository.
type Cipher interface {
	Seal(plaintext string) (string, error)
	Open(sealed string) (string, error)
}

type Service struct {
	repo   RepositoryAPI
	cipher Cipher
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, cipher Cipher, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		cipher: cipher,
		logger: logger,
	}
}

// Get returns the setting with secret values masked.
func (s *Service) Get(ctx context.Context, key string) (*Setting, error) {
	row, err := s.repo.Get(ctx, key)
	if err != nil {
		return nil, internal.NewInternalError("failed to get setting", err)
	}
	if row == nil {
		return nil, internal.ErrSettingNotFound
	}
	out := FromDataModel(row)
	if IsSecretKey(key) && out.Value != "" {
		out.Value = Mask
	}
	return out, nil
}

// Value returns the plaintext value of key, or "" when it is not set.
func (s *Service) Value(ctx context.Context, key string) (string, error) {
	row, err := s.repo.Get(ctx, key)
	if err != nil {
		return "", internal.NewInternalError("failed to get setting", err)
	}
	if row == nil {
		return "", nil
	}
	return s.open(row)
}

// Update stores value under key, creating the setting when absent. Writing
// the mask back to a secret key leaves the stored secret unchanged.
func (s *Service) Update(ctx context.Context, key, value string) (*Setting, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, internal.NewValidationFieldError("key", "key is required", "REQUIRED")
	}

	secret := IsSecretKey(key)
	if secret && value == Mask {
		return s.Get(ctx, key)
	}

	stored := value
	if secret && value != "" {
		sealed, err := s.cipher.Seal(value)
		if err != nil {
			return nil, internal.NewInternalError("failed to encrypt setting", err)
		}
		stored = sealed
	}

	row, err := s.repo.Upsert(ctx, key, stored)
	if err != nil {
		s.logger.Error("failed to store setting", "key", key, "error", err)
		return nil, internal.NewInternalError("failed to store setting", err)
	}
	s.logger.Info("setting updated", "key", key)

	out := FromDataModel(row)
	if secret && out.Value != "" {
		out.Value = Mask
	}
	return out, nil
}

// GetGroup returns every key under prefix, masked.
func (s *Service) GetGroup(ctx context.Context, prefix string) ([]*Setting, error) {
	rows, err := s.repo.ListByPrefix(ctx, prefix+".")
	if err != nil {
		return nil, internal.NewInternalError("failed to list settings", err)
	}
	out := make([]*Setting, 0, len(rows))
	for _, row := range rows {
		st := FromDataModel(row)
		if IsSecretKey(st.Key) && st.Value != "" {
			st.Value = Mask
		}
		out = append(out, st)
	}
	return out, nil
}

// GroupValues returns the known keys of a group by short name, e.g. "url"
// for grafana.url. Missing keys are empty and secrets are masked.
func (s *Service) GroupValues(ctx context.Context, group string) (map[string]string, error) {
	keys, ok := groupKeys[group]
	if !ok {
		return nil, internal.NewNotFoundError(fmt.Sprintf("unknown settings group %q", group), internal.ErrCodeSettingNotFound)
	}
	settings, err := s.GetGroup(ctx, group)
	if err != nil {
		return nil, err
	}

	byKey := make(map[string]string, len(settings))
	for _, st := range settings {
		byKey[st.Key] = st.Value
	}
	out := make(map[string]string, len(keys))
	for _, key := range keys {
		out[strings.TrimPrefix(key, group+".")] = byKey[key]
	}
	return out, nil
}

// UpdateGroup writes the given short-name values of a group. Unknown names are
// rejected before anything is written.
func (s *Service) UpdateGroup(ctx context.Context, group string, values map[string]string) (map[string]string, error) {
	keys, ok := groupKeys[group]
	if !ok {
		return nil, internal.NewNotFoundError(fmt.Sprintf("unknown settings group %q", group), internal.ErrCodeSettingNotFound)
	}
	known := make(map[string]bool, len(keys))
	for _, key := range keys {
		known[key] = true
	}
	for name := range values {
		if !known[group+"."+name] {
			return nil, internal.NewValidationFieldError(name, fmt.Sprintf("unknown %s setting %q", group, name), internal.ErrCodeValidationFailed)
		}
	}

	for _, key := range keys {
		value, present := values[strings.TrimPrefix(key, group+".")]
		if !present {
			continue
		}
		if _, err := s.Update(ctx, key, value); err != nil {
			return nil, err
		}
	}
	return s.GroupValues(ctx, group)
}

// Values returns every setting in plaintext, for overriding the loaded
// configuration. Secrets that cannot be opened are skipped.
func (s *Service) Values(ctx context.Context) (map[string]string, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to list settings", err)
	}
	out := make(map[string]string, len(rows))
	for _, row := range rows {
		v, err := s.open(row)
		if err != nil {
			s.logger.Warn("skipping unreadable setting", "key", row.Key, "error", err)
			continue
		}
		out[row.Key] = v
	}
	return out, nil
}

func (s *Service) open(row *settingDatamodel.Setting) (string, error) {
	if !IsSecretKey(row.Key) || !crypto.IsSealed(row.Value) {
		return row.Value, nil
	}
	plain, err := s.cipher.Open(row.Value)
	if err != nil {
		return "", internal.NewInternalError("failed to decrypt setting", err)
	}
	return plain, nil
}
