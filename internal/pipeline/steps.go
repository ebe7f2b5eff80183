package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/dvloznov/expense-bot/internal/domain"
	"github.com/dvloznov/expense-bot/internal/logger"
	"github.com/dvloznov/expense-bot/internal/telegram"
)

// PipelineStep represents a single step in the message pipeline.
type PipelineStep interface {
	Execute(ctx context.Context, state *PipelineState) error
}

// PipelineState holds the shared state of one webhook message.
type PipelineState struct {
	Text     string // trimmed incoming text
	ChatID   int64
	UserID   *int64
	Username string

	Record *domain.Record
	Row    domain.LedgerRow
}

// Step 1: ExtractStep asks the extractor for a structured record.
type ExtractStep struct {
	Extractor Extractor
}

func (s *ExtractStep) Execute(ctx context.Context, state *PipelineState) error {
	rec, err := s.Extractor.Extract(ctx, state.Text)
	if err != nil {
		return err
	}
	if rec == nil {
		rec = &domain.Record{}
	}
	state.Record = rec
	return nil
}

// Step 2: StampStep overwrites the raw message with the original text.
type StampStep struct{}

func (s *StampStep) Execute(ctx context.Context, state *PipelineState) error {
	if state.Record == nil {
		return errors.New("stamp: no extracted record")
	}
	state.Record.RawMessage = state.Text
	return nil
}

// Step 3: PersistStep appends the ledger row.
type PersistStep struct {
	Ledger Appender
	// Now stamps the ingestion time; nil uses time.Now.
	Now func() time.Time
}

func (s *PersistStep) Execute(ctx context.Context, state *PipelineState) error {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	row := domain.NewLedgerRow(now(), state.ChatID, state.UserID, state.Username, state.Record)
	if err := s.Ledger.Append(ctx, row); err != nil {
		return err
	}
	state.Row = row
	return nil
}

// Step 4: NotifySuccessStep confirms the saved record in the chat.
type NotifySuccessStep struct {
	Notifier Notifier
}

func (s *NotifySuccessStep) Execute(ctx context.Context, state *PipelineState) error {
	return s.Notifier.SendMessage(ctx, state.ChatID, telegram.SuccessMessage(state.Record))
}

// Pipeline executes a sequence of steps in order.
type Pipeline struct {
	steps []PipelineStep
}

// NewPipeline creates a new pipeline with the given steps.
func NewPipeline(steps ...PipelineStep) *Pipeline {
	return &Pipeline{steps: steps}
}

// Execute runs all steps sequentially and stops at the first failure.
// The failing step's error is returned as is so callers can surface its message.
func (p *Pipeline) Execute(ctx context.Context, state *PipelineState) error {
	log := logger.FromContext(ctx)
	for i, step := range p.steps {
		if err := step.Execute(ctx, state); err != nil {
			log.Debug().Int("step", i+1).Err(err).Msg("Pipeline step failed")
			return err
		}
	}
	return nil
}

// NewMessagePipeline creates the standard extract, stamp, persist, notify pipeline.
func NewMessagePipeline(extractor Extractor, ledger Appender, notifier Notifier) *Pipeline {
	return NewPipeline(
		&ExtractStep{Extractor: extractor},
		&StampStep{},
		&PersistStep{Ledger: ledger},
		&NotifySuccessStep{Notifier: notifier},
	)
}
