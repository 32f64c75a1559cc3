// Package intent modela as intenções conhecidas pelo bot, o contexto de cada ocorrência de uma
// intenção e o despacho do contexto pronto para o handler registrado.
package intent

import (
	"encoding/json"
	"fmt"

	"github.com/hugohenrick/intentbot/pkg/prompt"
)

// FallbackIntent é o nome convencional da intenção de fallback
const FallbackIntent = "fallbackIntent"

// Payload carrega os dados específicos de cada intenção (normalmente um ponteiro para struct)
type Payload interface{}

// Confirmer é implementado por payloads que exigem confirmação antes do despacho
type Confirmer interface {
	ConfirmationPrompt() string
}

// Context é uma ocorrência de intenção detectada, mutada entre turnos até o despacho
type Context struct {
	Name        string
	Query       string
	DialogID    string
	RequireAuth bool
	Fallback    bool
	Token       string
	Payload     Payload
}

// HasDialog indica se o contexto precisa de um sub-diálogo de coleta
func (c *Context) HasDialog() bool {
	return c.DialogID != ""
}

// ConfirmationPrompt retorna o texto de confirmação, vazio quando não há confirmação
func (c *Context) ConfirmationPrompt() string {
	if cf, ok := c.Payload.(Confirmer); ok {
		return cf.ConfirmationPrompt()
	}
	return ""
}

// Snapshot é a forma persistida de um Context em andamento
type Snapshot struct {
	Name    string          `json:"name"`
	Query   string          `json:"query"`
	Token   string          `json:"token,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Snapshot serializa o contexto para ser retomado no próximo turno
func (c *Context) Snapshot() (*Snapshot, error) {
	s := &Snapshot{Name: c.Name, Query: c.Query, Token: c.Token}
	if c.Payload != nil {
		raw, err := json.Marshal(c.Payload)
		if err != nil {
			return nil, fmt.Errorf("erro ao serializar payload de %s: %w", c.Name, err)
		}
		s.Payload = raw
	}
	return s, nil
}

// Descriptor registra uma intenção conhecida
type Descriptor struct {
	Name        string
	New         func() Payload
	RequireAuth bool
	Fallback    bool
	Fields      *prompt.FieldSet
}

// DialogID retorna o identificador do sub-diálogo de coleta, vazio quando não há campos
func (d *Descriptor) DialogID() string {
	if d.Fields.Len() == 0 {
		return ""
	}
	return "UserInput_" + d.Name
}

func (d *Descriptor) newContext(query string) *Context {
	c := &Context{
		Name:        d.Name,
		Query:       query,
		DialogID:    d.DialogID(),
		RequireAuth: d.RequireAuth,
		Fallback:    d.Fallback,
	}
	if d.New != nil {
		c.Payload = d.New()
	}
	return c
}
