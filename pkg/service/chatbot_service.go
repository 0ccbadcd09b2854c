// Conversation engine - drives the intake dialogue state machine
package service

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/konekta/ouvidoria/pkg/db"
	"github.com/konekta/ouvidoria/pkg/utils"
)

var (
	ErrUsuarioNotFound = errors.New("usuario not found in session context")
)

var telefonePattern = regexp.MustCompile(`^\d{10,13}$`)

// maxResumoLen is where the auto-generated summary truncates the description.
const maxResumoLen = 100

// ChatbotService is the conversation engine. It consumes one (phone, text)
// pair at a time, dispatches on the durable chat state, and drives the
// outbound prompts. The caller (Dispatcher) guarantees per-phone serialization,
// so handlers never race on the same ChatState row.
type ChatbotService struct {
	db       *gorm.DB
	sender   MessageSender
	audit    AuditSink
	parties  *PartyService
	protocol *ProtocolService
	logger   *slog.Logger
}

// NewChatbotService creates a new chatbot service
func NewChatbotService(gdb *gorm.DB, sender MessageSender, audit AuditSink, parties *PartyService, protocol *ProtocolService) *ChatbotService {
	return &ChatbotService{
		db:       gdb,
		sender:   sender,
		audit:    audit,
		parties:  parties,
		protocol: protocol,
		logger:   utils.GetLogger(),
	}
}

// AutoMigrate creates database tables
func (s *ChatbotService) AutoMigrate() error {
	return s.db.AutoMigrate(&db.ChatState{}, &db.Manifestacao{})
}

// HandleIncomingMessage runs one dialogue turn for a phone number. Any
// unexpected handler error or panic sends an apology and resets the
// conversation; validation failures re-prompt without touching the stored
// state.
func (s *ChatbotService) HandleIncomingMessage(from, message string) {
	phone := NormalizePhone(from)

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Handler panicked, resetting conversation", "phone", phone, "panic", r)
			s.sendText(phone, msgErroInterno)
			s.resetChatState(phone)
		}
	}()

	state, err := s.getOrCreateChatState(phone)
	if err != nil {
		s.logger.Error("Failed to load chat state", "phone", phone, "error", err)
		return
	}

	s.logger.Info("Processing message", "phone", phone, "state", state.CurrentState)

	if err := s.dispatch(phone, strings.TrimSpace(message), state); err != nil {
		s.logger.Error("Handler failed, resetting conversation", "phone", phone, "state", state.CurrentState, "error", err)
		s.sendText(phone, msgErroInterno)
		s.resetChatState(phone)
	}
}

func (s *ChatbotService) dispatch(phone, message string, state *db.ChatState) error {
	switch state.CurrentState {
	case db.EstadoInicio:
		return s.handleInicio(phone, state)
	case db.EstadoIdentificacao:
		return s.handleIdentificacao(phone, message, state)
	case db.EstadoColetaIdentificacao:
		return s.handleColetaIdentificacao(phone, message, state)
	case db.EstadoLgpd:
		return s.handleLgpd(phone, message, state)
	case db.EstadoTipoManifestacao:
		return s.handleTipoManifestacao(phone, message, state)
	case db.EstadoCategoriaDenuncia:
		return s.handleCategoriaDenuncia(phone, message, state)
	case db.EstadoColetaDetalhes:
		return s.handleColetaDetalhes(phone, message, state)
	case db.EstadoResumoConfirmacao:
		return s.handleResumoConfirmacao(phone, message, state)
	default:
		// Unknown stored state: start over.
		s.resetChatState(phone)
		fresh, err := s.getOrCreateChatState(phone)
		if err != nil {
			return err
		}
		return s.handleInicio(phone, fresh)
	}
}

// ========== State handlers ==========

func (s *ChatbotService) handleInicio(phone string, state *db.ChatState) error {
	if err := s.sender.SendChoice(phone, msgBemVindo, []string{"Sim", "Anonimato"}); err != nil {
		s.logger.Error("Failed to send welcome", "phone", phone, "error", err)
	}
	return s.updateChatState(state, db.EstadoIdentificacao)
}

func (s *ChatbotService) handleIdentificacao(phone, message string, state *db.ChatState) error {
	switch {
	case strings.EqualFold(message, "sim"):
		s.sendText(phone, msgPedirDados)
		return s.updateChatState(state, db.EstadoColetaIdentificacao)

	case strings.EqualFold(message, "anonimato"):
		usuario, err := s.parties.CreateAnonymous(phone)
		if err != nil {
			return err
		}
		state.Context[db.ContextAnonimo] = "true"
		state.Context[db.ContextUsuarioID] = usuario.ID
		return s.sendLgpdPrompt(phone, state)

	default:
		s.sendText(phone, msgRespostaIdentificacao)
		return nil
	}
}

func (s *ChatbotService) handleColetaIdentificacao(phone, message string, state *db.ChatState) error {
	parts := strings.Split(message, ",")
	if len(parts) < 2 {
		s.sendText(phone, msgFormatoInvalido)
		return nil
	}

	nome := strings.TrimSpace(parts[0])
	telefone := strings.TrimSpace(parts[1])
	email := ""
	if len(parts) > 2 {
		email = strings.TrimSpace(parts[2])
	}

	if !telefonePattern.MatchString(telefone) {
		s.sendText(phone, msgTelefoneInvalido)
		return nil
	}

	state.Context[db.ContextNome] = nome
	state.Context[db.ContextTelefone] = telefone
	state.Context[db.ContextEmail] = email
	state.Context[db.ContextAnonimo] = "false"

	return s.sendLgpdPrompt(phone, state)
}

func (s *ChatbotService) handleLgpd(phone, message string, state *db.ChatState) error {
	switch {
	case strings.EqualFold(message, "concordo"):
		usuario, err := s.resolveUsuario(phone, state)
		if err != nil {
			return err
		}
		state.Context[db.ContextUsuarioID] = usuario.ID
		return s.sendTipoPrompt(phone, state)

	case strings.EqualFold(message, "não concordo"), strings.EqualFold(message, "nao concordo"):
		s.sendText(phone, msgSemConsentimento)
		s.resetChatState(phone)
		return nil

	default:
		s.sendText(phone, msgRespostaLgpd)
		return nil
	}
}

func (s *ChatbotService) handleTipoManifestacao(phone, message string, state *db.ChatState) error {
	tipo, ok := db.ParseTipoManifestacao(message)
	if !ok {
		s.sendText(phone, msgTipoInvalido)
		return nil
	}

	state.Context[db.ContextTipo] = string(tipo)

	if tipo == db.TipoDenuncia {
		options := make([]string, 0, len(db.CategoriasDenuncia))
		for _, c := range db.CategoriasDenuncia {
			options = append(options, string(c))
		}
		if err := s.sender.SendChoice(phone, msgCategoriaDenuncia, options); err != nil {
			s.logger.Error("Failed to send category choice", "phone", phone, "error", err)
		}
		return s.updateChatState(state, db.EstadoCategoriaDenuncia)
	}

	s.sendText(phone, detailPrompt(tipo))
	return s.updateChatState(state, db.EstadoColetaDetalhes)
}

func (s *ChatbotService) handleCategoriaDenuncia(phone, message string, state *db.ChatState) error {
	categoria, ok := db.ParseCategoriaDenuncia(message)
	if !ok {
		s.sendText(phone, msgCategoriaInvalida)
		return nil
	}

	state.Context[db.ContextCategoria] = string(categoria)
	s.sendText(phone, detailPrompt(db.TipoDenuncia))
	return s.updateChatState(state, db.EstadoColetaDetalhes)
}

func (s *ChatbotService) handleColetaDetalhes(phone, message string, state *db.ChatState) error {
	if message == "" {
		s.sendText(phone, detailPrompt(db.TipoManifestacao(state.Context[db.ContextTipo])))
		return nil
	}

	state.Context[db.ContextDescricao] = message
	resumo := buildResumo(db.TipoManifestacao(state.Context[db.ContextTipo]), message)
	state.Context[db.ContextResumo] = resumo

	if err := s.sender.SendChoice(phone, resumoPrompt(resumo), []string{"Confirmar", "Corrigir"}); err != nil {
		s.logger.Error("Failed to send summary", "phone", phone, "error", err)
	}
	return s.updateChatState(state, db.EstadoResumoConfirmacao)
}

func (s *ChatbotService) handleResumoConfirmacao(phone, message string, state *db.ChatState) error {
	switch {
	case strings.EqualFold(message, "confirmar"):
		return s.finalizarManifestacao(phone, state)

	case strings.EqualFold(message, "corrigir"):
		s.sendText(phone, detailPrompt(db.TipoManifestacao(state.Context[db.ContextTipo])))
		return s.updateChatState(state, db.EstadoColetaDetalhes)

	default:
		s.sendText(phone, msgRespostaConfirmacao)
		return nil
	}
}

// ========== Finalization ==========

func (s *ChatbotService) finalizarManifestacao(phone string, state *db.ChatState) error {
	usuarioID := state.Context[db.ContextUsuarioID]
	if usuarioID == "" {
		return ErrUsuarioNotFound
	}
	usuario, err := s.parties.FindByID(usuarioID)
	if err != nil {
		return err
	}

	tipo := db.TipoManifestacao(state.Context[db.ContextTipo])
	protocolo, _, err := s.protocol.Generate(tipo)
	if err != nil {
		return err
	}

	m := &db.Manifestacao{
		ID:          uuid.New().String(),
		Tipo:        tipo,
		Categoria:   db.CategoriaDenuncia(state.Context[db.ContextCategoria]),
		Descricao:   state.Context[db.ContextDescricao],
		Resumo:      state.Context[db.ContextResumo],
		Protocolo:   protocolo,
		UsuarioID:   usuario.ID,
		DataCriacao: time.Now(),
	}
	if err := s.db.Create(m).Error; err != nil {
		return err
	}

	// The audit sheet row is numbered by this phone's case count, the way
	// the ombudsman team reads the spreadsheet. Failures never undo the case.
	numero := int64(1)
	if usuario.Telefone != nil {
		if count, err := s.parties.CountManifestacoesByPhone(*usuario.Telefone); err == nil {
			numero = count
		}
	}
	if err := s.audit.AppendManifestacao(m, usuario, numero); err != nil {
		s.logger.Error("Audit sink write failed", "protocolo", protocolo, "error", err)
	}

	s.sendText(phone, protocoloMessage(protocolo, tipo, time.Now().Format("02/01/2006 15:04")))
	s.logger.Info("Manifestação finalized", "protocolo", protocolo, "tipo", tipo)

	s.resetChatState(phone)
	return nil
}

// buildResumo derives the one-line summary shown for confirmation.
// Truncation counts characters, not bytes, so accented text stays valid.
func buildResumo(tipo db.TipoManifestacao, descricao string) string {
	if runes := []rune(descricao); len(runes) > maxResumoLen {
		descricao = string(runes[:maxResumoLen]) + "..."
	}
	return fmt.Sprintf("[%s] %s", tipo, descricao)
}

// ========== Persistence helpers ==========

func (s *ChatbotService) getOrCreateChatState(phone string) (*db.ChatState, error) {
	var state db.ChatState
	err := s.db.First(&state, "phone_number = ?", phone).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &db.ChatState{
			PhoneNumber:  phone,
			CurrentState: db.EstadoInicio,
			Context:      db.ContextMap{},
		}, nil
	}
	if err != nil {
		return nil, err
	}
	if state.Context == nil {
		state.Context = db.ContextMap{}
	}
	return &state, nil
}

// updateChatState commits a transition together with any context writes the
// handler made. Error branches never call this, so their turns leave the
// stored row untouched.
func (s *ChatbotService) updateChatState(state *db.ChatState, next db.EstadoChat) error {
	state.CurrentState = next
	state.LastUpdate = time.Now()
	return s.db.Save(state).Error
}

// resetChatState puts the conversation back at the start and clears the
// collected context.
func (s *ChatbotService) resetChatState(phone string) {
	err := s.db.Model(&db.ChatState{}).
		Where("phone_number = ?", phone).
		Updates(map[string]interface{}{
			"current_state": db.EstadoInicio,
			"context":       db.ContextMap{},
			"last_update":   time.Now(),
		}).Error
	if err != nil {
		s.logger.Error("Failed to reset chat state", "phone", phone, "error", err)
	}
}

func (s *ChatbotService) resolveUsuario(phone string, state *db.ChatState) (*db.Usuario, error) {
	if state.Context[db.ContextAnonimo] == "true" {
		return s.parties.CreateAnonymous(phone)
	}
	return s.parties.ResolveIdentified(
		state.Context[db.ContextNome],
		state.Context[db.ContextTelefone],
		state.Context[db.ContextEmail],
	)
}

// ========== Outbound helpers ==========

func (s *ChatbotService) sendText(phone, message string) {
	if err := s.sender.SendText(phone, message); err != nil {
		// The committed state stands; the user resends if the prompt is lost.
		s.logger.Error("Failed to send message", "phone", phone, "error", err)
	}
}

func (s *ChatbotService) sendLgpdPrompt(phone string, state *db.ChatState) error {
	if err := s.sender.SendChoice(phone, msgLgpd, []string{"Concordo", "Não concordo"}); err != nil {
		s.logger.Error("Failed to send LGPD prompt", "phone", phone, "error", err)
	}
	return s.updateChatState(state, db.EstadoLgpd)
}

func (s *ChatbotService) sendTipoPrompt(phone string, state *db.ChatState) error {
	options := make([]string, 0, len(db.TiposManifestacao))
	for _, t := range db.TiposManifestacao {
		options = append(options, string(t))
	}
	if err := s.sender.SendChoice(phone, msgTipoManifestacao, options); err != nil {
		s.logger.Error("Failed to send type choice", "phone", phone, "error", err)
	}
	return s.updateChatState(state, db.EstadoTipoManifestacao)
}
