package intent

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/hugohenrick/intentbot/pkg/logger"
)

// Erros de configuração do registro de intenções
var (
	ErrNoIntents          = errors.New("nenhuma intenção registrada")
	ErrNoFallback         = errors.New("nenhuma intenção de fallback registrada")
	ErrMultipleFallbacks  = errors.New("mais de uma intenção de fallback registrada")
	ErrDuplicateIntent    = errors.New("intenção registrada mais de uma vez")
	ErrInvalidDescriptor  = errors.New("descritor de intenção inválido")
	ErrIncompleteSnapshot = errors.New("snapshot de intenção incompleto")
)

// Registry mantém as intenções conhecidas. É somente leitura após a construção.
type Registry struct {
	logger      logger.Logger
	descriptors []*Descriptor
	byName      map[string]*Descriptor
	byDialog    map[string]*Descriptor
	fallback    *Descriptor
}

// NewRegistry valida e registra os descritores
func NewRegistry(log logger.Logger, descriptors ...Descriptor) (*Registry, error) {
	if len(descriptors) == 0 {
		return nil, ErrNoIntents
	}

	r := &Registry{
		logger:   log,
		byName:   make(map[string]*Descriptor, len(descriptors)),
		byDialog: make(map[string]*Descriptor),
	}

	for i := range descriptors {
		d := descriptors[i]
		if strings.TrimSpace(d.Name) == "" {
			return nil, fmt.Errorf("%w: nome vazio na posição %d", ErrInvalidDescriptor, i)
		}
		if d.Fields.Len() > 0 && d.New == nil {
			return nil, fmt.Errorf("%w: %s declara campos mas não tem fábrica de payload", ErrInvalidDescriptor, d.Name)
		}

		key := strings.ToLower(d.Name)
		if _, exists := r.byName[key]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateIntent, d.Name)
		}

		if d.Fallback {
			if r.fallback != nil {
				return nil, fmt.Errorf("%w: %s e %s", ErrMultipleFallbacks, r.fallback.Name, d.Name)
			}
			r.fallback = &d
		}

		r.byName[key] = &d
		r.descriptors = append(r.descriptors, &d)
		if id := d.DialogID(); id != "" {
			r.byDialog[id] = &d
		}
	}

	if r.fallback == nil {
		return nil, ErrNoFallback
	}

	log.Info("Intents registered", "count", len(r.descriptors), "fallback", r.fallback.Name)
	return r, nil
}

// Resolve retorna o descritor da intenção. Nunca falha: nomes vazios ou desconhecidos
// resolvem para o fallback.
func (r *Registry) Resolve(name string) *Descriptor {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return r.fallback
	}
	if d, ok := r.byName[key]; ok {
		return d
	}
	r.logger.Debug("Intent not registered, using fallback", "intent", name)
	return r.fallback
}

// CreateContext resolve a intenção e cria um novo contexto para a consulta
func (r *Registry) CreateContext(name, query string) *Context {
	return r.Resolve(name).newContext(query)
}

// Restore reconstrói um contexto persistido
func (r *Registry) Restore(s *Snapshot) (*Context, error) {
	if s == nil || s.Name == "" {
		return nil, ErrIncompleteSnapshot
	}

	c := r.Resolve(s.Name).newContext(s.Query)
	c.Token = s.Token
	if len(s.Payload) > 0 && c.Payload != nil {
		if err := json.Unmarshal(s.Payload, c.Payload); err != nil {
			return nil, fmt.Errorf("erro ao restaurar payload de %s: %w", c.Name, err)
		}
	}
	return c, nil
}

// Lookup retorna o descritor ligado a um sub-diálogo de coleta
func (r *Registry) Lookup(dialogID string) (*Descriptor, bool) {
	d, ok := r.byDialog[dialogID]
	return d, ok
}

// Fallback retorna o descritor de fallback
func (r *Registry) Fallback() *Descriptor {
	return r.fallback
}

// Names retorna os nomes registrados, na ordem de registro
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.descriptors))
	for _, d := range r.descriptors {
		names = append(names, d.Name)
	}
	return names
}
