package document

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/hperssn/genesis/internal/domain"
)

const (
	MsgSaved      = "PRD saved successfully!"
	msgSaveFailed = "Could not save PRD: %v"
)

// Payload is the body accepted by the persistence endpoint.
type Payload struct {
	Markdown  string            `json:"markdown"`
	Answers   map[string]string `json:"answers"`
	Timestamp string            `json:"timestamp"`
}

// Receipt is what the endpoint returns for a stored document.
type Receipt struct {
	Filename string `json:"filename"`
}

type Submitter interface {
	Submit(ctx context.Context, p Payload) (Receipt, error)
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, p Payload) (Receipt, error)

func (f SubmitterFunc) Submit(ctx context.Context, p Payload) (Receipt, error) {
	return f(ctx, p)
}

// NewPayload builds the submission for doc.
func NewPayload(doc Document, answers domain.AnswerSet) Payload {
	return Payload{
		Markdown:  doc.Markdown,
		Answers:   answers.StringKeys(),
		Timestamp: Timestamp(doc.GeneratedAt),
	}
}

// Publisher submits generated documents in the background. The outcome is
// only reported through a notifier; callers never wait on it.
type Publisher struct {
	submitter Submitter
	log       *zap.Logger
	wg        sync.WaitGroup
}

func NewPublisher(s Submitter, log *zap.Logger) *Publisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Publisher{submitter: s, log: log}
}

// Publish starts the submission of doc and returns immediately. Failures are
// not retried.
func (p *Publisher) Publish(ctx context.Context, doc Document, answers domain.AnswerSet, n domain.Notifier) {
	payload := NewPayload(doc, answers)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		receipt, err := p.submitter.Submit(ctx, payload)
		if err != nil {
			p.log.Warn("document submission failed",
				zap.String("timestamp", payload.Timestamp),
				zap.Error(err))
			notify(n, domain.Notice{Level: domain.NoticeError, Message: fmt.Sprintf(msgSaveFailed, err)})
			return
		}

		// The stored filename is not surfaced to the user.
		p.log.Debug("document submitted", zap.String("filename", receipt.Filename))
		notify(n, domain.Notice{Level: domain.NoticeInfo, Message: MsgSaved})
	}()
}

// Wait blocks until in-flight submissions finish. Used on shutdown.
func (p *Publisher) Wait() {
	p.wg.Wait()
}

func notify(n domain.Notifier, notice domain.Notice) {
	if n != nil {
		n.Notify(notice)
	}
}
