// Database models for reporter identities
package db

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"
)

// LgpdConsentimento records the LGPD data-processing consent decision
type LgpdConsentimento string

const (
	ConsentimentoPendente    LgpdConsentimento = "PENDENTE"
	ConsentimentoConcordo    LgpdConsentimento = "CONCORDO"
	ConsentimentoNaoConcordo LgpdConsentimento = "NAO_CONCORDO"
)

var (
	ErrUsuarioSemContato    = errors.New("identified usuario needs at least one contact field")
	ErrConsentimentoAusente = errors.New("lgpd consent is required")
	ErrEmailInvalido        = errors.New("invalid email format")
	ErrTelefoneInvalido     = errors.New("telefone must have 10 to 13 digits")
)

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9+_.-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// Usuario is the reporter identity behind one or more manifestações.
// Anonymous usuários keep the conversation phone for linkage, but name and
// email are always cleared before persisting.
type Usuario struct {
	ID                string            `json:"id" gorm:"primaryKey;size:36"`
	Nome              *string           `json:"nome,omitempty" gorm:"size:200"`
	Telefone          *string           `json:"telefone,omitempty" gorm:"size:20;index"`
	Email             *string           `json:"email,omitempty" gorm:"size:200"`
	Anonimo           bool              `json:"anonimo" gorm:"not null;default:false"`
	LgpdConsentimento LgpdConsentimento `json:"lgpd_consentimento" gorm:"size:20;not null"`
	DataConsentimento *time.Time        `json:"data_consentimento,omitempty"`
	DataCriacao       time.Time         `json:"data_criacao" gorm:"not null"`
}

// TableName returns the table name
func (Usuario) TableName() string {
	return "usuarios"
}

// BeforeSave enforces the anonymity and consent invariants
func (u *Usuario) BeforeSave(tx *gorm.DB) error {
	if u.Anonimo {
		// Display identity is never stored for anonymous reporters.
		u.Nome = nil
		u.Email = nil
	} else {
		if isBlank(u.Nome) && isBlank(u.Telefone) && isBlank(u.Email) {
			return ErrUsuarioSemContato
		}
	}

	if u.LgpdConsentimento == "" {
		return ErrConsentimentoAusente
	}
	if u.LgpdConsentimento == ConsentimentoConcordo && u.DataConsentimento == nil {
		now := time.Now()
		u.DataConsentimento = &now
	}

	if !isBlank(u.Email) && !emailPattern.MatchString(strings.TrimSpace(*u.Email)) {
		return ErrEmailInvalido
	}
	if !isBlank(u.Telefone) {
		digits := strings.Map(keepDigit, *u.Telefone)
		if len(digits) < 10 || len(digits) > 13 {
			return ErrTelefoneInvalido
		}
	}

	if u.DataCriacao.IsZero() {
		u.DataCriacao = time.Now()
	}
	return nil
}

func isBlank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

func keepDigit(r rune) rune {
	if r >= '0' && r <= '9' {
		return r
	}
	return -1
}
