// Protocol number generation
package service

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/konekta/ouvidoria/pkg/db"
	"github.com/konekta/ouvidoria/pkg/utils"
)

// ProtocolService hands out protocol numbers like REC20250828-0001: a
// three-letter type prefix, the date, and a zero-padded daily sequence.
// The sequence is a counter row per (tipo, day), incremented inside a
// transaction; the in-process mutex serializes concurrent finalizations and
// the counter's composite primary key backs it up across processes.
type ProtocolService struct {
	db     *gorm.DB
	logger *slog.Logger
	mu     sync.Mutex
}

// NewProtocolService creates a new protocol service
func NewProtocolService(gdb *gorm.DB) *ProtocolService {
	return &ProtocolService{
		db:     gdb,
		logger: utils.GetLogger(),
	}
}

// AutoMigrate creates database tables
func (s *ProtocolService) AutoMigrate() error {
	return s.db.AutoMigrate(&db.ProtocolCounter{})
}

// Generate allocates the next protocol number for tipo, dated today.
// The returned sequence is unique per (tipo, day) even under concurrent
// finalizations.
func (s *ProtocolService) Generate(tipo db.TipoManifestacao) (string, int64, error) {
	day := time.Now().Format("20060102")

	s.mu.Lock()
	defer s.mu.Unlock()

	var seq int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var counter db.ProtocolCounter
		err := tx.Where("case_type = ? AND day = ?", tipo, day).First(&counter).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			counter = db.ProtocolCounter{CaseType: tipo, Day: day}
			if err := tx.Create(&counter).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		// Increment in SQL so another process bumping the same row can
		// never hand out a value this one already read.
		if err := tx.Model(&db.ProtocolCounter{}).
			Where("case_type = ? AND day = ?", tipo, day).
			Update("value", gorm.Expr("value + 1")).Error; err != nil {
			return err
		}
		if err := tx.Where("case_type = ? AND day = ?", tipo, day).First(&counter).Error; err != nil {
			return err
		}
		seq = counter.Value
		return nil
	})
	if err != nil {
		return "", 0, err
	}

	protocolo := fmt.Sprintf("%s%s-%04d", typePrefix(tipo), day, seq)
	s.logger.Debug("Generated protocol", "protocolo", protocolo)
	return protocolo, seq, nil
}

func typePrefix(tipo db.TipoManifestacao) string {
	switch tipo {
	case db.TipoElogio:
		return "ELG"
	case db.TipoSugestao:
		return "SUG"
	case db.TipoReclamacao:
		return "REC"
	case db.TipoDenuncia:
		return "DEN"
	default:
		return "MAN"
	}
}
