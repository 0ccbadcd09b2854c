// Google Sheets audit sink for finalized manifestações
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/pkg/errors"
	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"

	"github.com/konekta/ouvidoria/pkg/db"
	"github.com/konekta/ouvidoria/pkg/utils"
)

// AuditSink records finalized cases in an external audit log. Failures are
// the sink's own problem: the case commit never rolls back because of them.
type AuditSink interface {
	AppendManifestacao(m *db.Manifestacao, usuario *db.Usuario, numero int64) error
}

// SheetsService appends one row per finalized manifestação to a Google
// spreadsheet. The Sheets client is built lazily on first use so the service
// can start without Google credentials when no spreadsheet is configured.
type SheetsService struct {
	credentialsFile string
	spreadsheetID   string
	sheetName       string
	logger          *slog.Logger

	mu            sync.Mutex
	svc           *sheets.Service
	headerWritten bool
}

var sheetHeader = []interface{}{
	"Protocolo", "Data", "Tipo", "Categoria", "Descricao", "Resumo",
	"Nome", "Telefone", "Email", "Anonimo", "LGPD", "Data Consentimento", "Status",
}

// NewSheetsService creates a new sheets audit sink
func NewSheetsService(credentialsFile, spreadsheetID, sheetName string) *SheetsService {
	return &SheetsService{
		credentialsFile: credentialsFile,
		spreadsheetID:   spreadsheetID,
		sheetName:       sheetName,
		logger:          utils.GetLogger(),
	}
}

// AppendManifestacao writes the audit row for a finalized case. When no
// spreadsheet is configured the call is a logged no-op, matching how the
// service behaves in local development.
func (s *SheetsService) AppendManifestacao(m *db.Manifestacao, usuario *db.Usuario, numero int64) error {
	if s.spreadsheetID == "" {
		s.logger.Warn("Sheets spreadsheet id not configured, skipping audit row", "protocolo", m.Protocolo)
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	svc, err := s.service()
	if err != nil {
		return err
	}

	if err := s.ensureHeader(svc); err != nil {
		// Header bootstrap is cosmetic; the row append still goes through.
		s.logger.Debug("Could not initialize sheet header", "error", err)
	}

	row := s.buildRow(m, usuario)
	rng := fmt.Sprintf("%s!A:M", s.sheetName)
	_, err = svc.Spreadsheets.Values.
		Append(s.spreadsheetID, rng, &sheets.ValueRange{Values: [][]interface{}{row}}).
		ValueInputOption("USER_ENTERED").
		Context(context.Background()).
		Do()
	if err != nil {
		return errors.Wrapf(err, "append manifestação %d to sheet", numero)
	}

	s.logger.Info("Manifestação recorded in audit sheet", "protocolo", m.Protocolo, "numero", numero)
	return nil
}

func (s *SheetsService) service() (*sheets.Service, error) {
	if s.svc != nil {
		return s.svc, nil
	}

	opts := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope)}
	if s.credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(s.credentialsFile))
	}

	svc, err := sheets.NewService(context.Background(), opts...)
	if err != nil {
		return nil, errors.Wrap(err, "initialize sheets service")
	}
	s.svc = svc
	return svc, nil
}

// ensureHeader writes the header row once, when the sheet is still empty.
func (s *SheetsService) ensureHeader(svc *sheets.Service) error {
	if s.headerWritten {
		return nil
	}

	rng := fmt.Sprintf("%s!A1:M1", s.sheetName)
	resp, err := svc.Spreadsheets.Values.Get(s.spreadsheetID, rng).Do()
	if err != nil {
		return err
	}
	if len(resp.Values) == 0 {
		_, err = svc.Spreadsheets.Values.
			Update(s.spreadsheetID, rng, &sheets.ValueRange{Values: [][]interface{}{sheetHeader}}).
			ValueInputOption("RAW").
			Do()
		if err != nil {
			return err
		}
		s.logger.Info("Initialized audit sheet header")
	}
	s.headerWritten = true
	return nil
}

func (s *SheetsService) buildRow(m *db.Manifestacao, usuario *db.Usuario) []interface{} {
	nome, telefone, email := "", "", ""
	anonimo := "false"
	consentimento := ""
	lgpd := ""
	if usuario != nil {
		if usuario.Anonimo {
			anonimo = "true"
		} else {
			// Display identity only for identified reporters.
			nome = strValue(usuario.Nome)
			telefone = strValue(usuario.Telefone)
			email = strValue(usuario.Email)
		}
		lgpd = string(usuario.LgpdConsentimento)
		if usuario.DataConsentimento != nil {
			consentimento = usuario.DataConsentimento.Format("2006-01-02 15:04:05")
		}
	}

	return []interface{}{
		m.Protocolo,
		m.DataCriacao.Format("2006-01-02 15:04:05"),
		string(m.Tipo),
		string(m.Categoria),
		m.Descricao,
		m.Resumo,
		nome,
		telefone,
		email,
		anonimo,
		lgpd,
		consentimento,
		"PENDENTE",
	}
}

func strValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
