package report

import (
	"context"
	"fmt"
	"time"

	"aulas/internal/cache"
	"aulas/internal/core"
	"aulas/internal/log"
)

// Document is a rendered report ready to be downloaded.
type Document struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Service renders reports and caches the results. Cache keys embed the
// ledger revision, so a mutation makes every older entry unreachable.
type Service struct {
	generator *Generator
	renderers map[Format]Renderer
	docs      cache.Cache[Document]
	revision  func() uint64
	logger    *log.Logger
}

type ServiceConfig struct {
	CacheSize int
	CacheTTL  time.Duration
	// Revision reports the current ledger revision. Nil disables caching.
	Revision func() uint64
	Logger   *log.Logger
}

func NewService(gen *Generator, cfg ServiceConfig, renderers ...Renderer) *Service {
	if len(renderers) == 0 {
		renderers = []Renderer{NewPDFRenderer(), NewXLSXRenderer()}
	}
	s := &Service{
		generator: gen,
		renderers: make(map[Format]Renderer, len(renderers)),
		revision:  cfg.Revision,
		logger:    log.Nop(),
	}
	for _, r := range renderers {
		s.renderers[r.Format()] = r
	}
	if cfg.Logger != nil {
		s.logger = cfg.Logger.WithComponent(log.ComponentReport)
	}
	if s.revision != nil && cfg.CacheSize > 0 {
		s.docs = cache.NewLRUCache[Document](cfg.CacheSize, cfg.CacheTTL)
	}
	return s
}

// Cache exposes the document cache so it can be registered for periodic
// cleanup. It is nil when caching is disabled.
func (s *Service) Cache() cache.Cleaner {
	if c, ok := s.docs.(cache.Cleaner); ok {
		return c
	}
	return nil
}

// Document renders the monthly report of studentName in the given format.
func (s *Service) Document(ctx context.Context, studentName string, month core.YearMonth, format Format) (Document, error) {
	renderer, ok := s.renderers[format]
	if !ok {
		return Document{}, fmt.Errorf("%w: unsupported report format %q", core.ErrValidation, format)
	}

	key := ""
	if s.docs != nil {
		key = fmt.Sprintf("%d|%s|%s|%s", s.revision(), studentName, month.Key(), format)
		if doc, ok := s.docs.Get(key); ok {
			s.logger.DebugContext(ctx, "Report served from cache",
				log.FieldStudent, studentName,
				log.FieldMonth, month.String(),
				log.FieldFormat, string(format),
				log.FieldCacheHit, true)
			return doc, nil
		}
	}

	rep, err := s.generator.Generate(studentName, month)
	if err != nil {
		return Document{}, err
	}

	body, err := renderer.Render(rep)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to render report",
			log.FieldOperation, log.OpRender,
			log.FieldStudent, studentName,
			log.FieldFormat, string(format),
			log.FieldError, err)
		return Document{}, err
	}

	doc := Document{
		Filename:    Filename(studentName, month, format),
		ContentType: renderer.ContentType(),
		Body:        body,
	}
	if s.docs != nil {
		s.docs.Set(key, doc)
	}

	s.logger.InfoContext(ctx, "Report rendered",
		log.FieldOperation, log.OpRender,
		log.FieldStudent, studentName,
		log.FieldMonth, month.String(),
		log.FieldFormat, string(format),
		log.FieldSessions, rep.SessionCount(),
		log.FieldSizeBytes, len(body))
	return doc, nil
}

// Filename is Relatorio_<student>_<MM-AAAA>.<ext>.
func Filename(studentName string, month core.YearMonth, format Format) string {
	return fmt.Sprintf("Relatorio_%s_%s.%s", studentName, month.String(), format)
}
