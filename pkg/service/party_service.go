// Party resolution - creates or reuses reporter identities
package service

import (
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/konekta/ouvidoria/pkg/db"
	"github.com/konekta/ouvidoria/pkg/utils"
)

// PartyService creates and reuses Usuario records while enforcing the
// anonymity and consent invariants (the rest lives in db.Usuario.BeforeSave).
type PartyService struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewPartyService creates a new party service
func NewPartyService(gdb *gorm.DB) *PartyService {
	return &PartyService{
		db:     gdb,
		logger: utils.GetLogger(),
	}
}

// AutoMigrate creates database tables
func (s *PartyService) AutoMigrate() error {
	return s.db.AutoMigrate(&db.Usuario{})
}

// CreateAnonymous always creates a fresh anonymous Usuario. The phone key is
// kept for linkage between a conversation and its cases; name and email are
// cleared by the model hook. Consent is implied by reaching this point in
// the dialogue.
func (s *PartyService) CreateAnonymous(phoneKey string) (*db.Usuario, error) {
	now := time.Now()
	u := &db.Usuario{
		ID:                uuid.New().String(),
		Telefone:          &phoneKey,
		Anonimo:           true,
		LgpdConsentimento: db.ConsentimentoConcordo,
		DataConsentimento: &now,
	}
	if err := s.db.Create(u).Error; err != nil {
		return nil, err
	}
	s.logger.Info("Created anonymous usuario", "id", u.ID)
	return u, nil
}

// ResolveIdentified finds an existing Usuario by phone and overwrites its
// identity fields, or creates a new one. Re-identification replaces prior
// name/email without keeping history.
func (s *PartyService) ResolveIdentified(nome, telefone, email string) (*db.Usuario, error) {
	now := time.Now()

	var existing db.Usuario
	err := s.db.Where("telefone = ?", telefone).First(&existing).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if err == nil {
		existing.Nome = optional(nome)
		existing.Email = optional(email)
		existing.Anonimo = false
		existing.LgpdConsentimento = db.ConsentimentoConcordo
		existing.DataConsentimento = &now
		if err := s.db.Save(&existing).Error; err != nil {
			return nil, err
		}
		s.logger.Info("Updated identified usuario", "id", existing.ID)
		return &existing, nil
	}

	u := &db.Usuario{
		ID:                uuid.New().String(),
		Nome:              optional(nome),
		Telefone:          optional(telefone),
		Email:             optional(email),
		Anonimo:           false,
		LgpdConsentimento: db.ConsentimentoConcordo,
		DataConsentimento: &now,
	}
	if err := s.db.Create(u).Error; err != nil {
		return nil, err
	}
	s.logger.Info("Created identified usuario", "id", u.ID)
	return u, nil
}

// FindByID loads a Usuario by primary key.
func (s *PartyService) FindByID(id string) (*db.Usuario, error) {
	var u db.Usuario
	if err := s.db.First(&u, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// CountManifestacoesByPhone counts prior cases linked to a phone. It feeds
// the audit sheet's row number, not the protocol sequence.
func (s *PartyService) CountManifestacoesByPhone(telefone string) (int64, error) {
	var count int64
	err := s.db.Model(&db.Manifestacao{}).
		Joins("JOIN usuarios ON usuarios.id = manifestacoes.usuario_id").
		Where("usuarios.telefone = ?", telefone).
		Count(&count).Error
	return count, err
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
