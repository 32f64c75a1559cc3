// Package prompt descreve declarativamente os campos que um contexto de intenção precisa coletar
// e conduz a coleta campo a campo, um turno por vez.
package prompt

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Erros de configuração dos campos
var (
	ErrNoFields       = errors.New("nenhum campo para coletar")
	ErrEmptyFieldName = errors.New("nome do campo vazio")
	ErrEmptyPrompt    = errors.New("texto do prompt vazio")
	ErrDuplicateField = errors.New("campo duplicado")
	ErrNilAccessor    = errors.New("acessor do campo nulo")
	ErrFieldType      = errors.New("tipo do campo incompatível com o prompt")
)

// Kind é o tipo de prompt usado para coletar o campo
type Kind int

const (
	KindText Kind = iota
	KindInt
	KindDouble
	KindBool
	KindDate
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindInt:
		return "int"
	case KindDouble:
		return "double"
	case KindBool:
		return "bool"
	case KindDate:
		return "date"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Validator valida um valor já reconhecido (string, int, float64, bool ou time.Time conforme o Kind)
type Validator func(value interface{}) bool

// Field descreve como um campo do payload é solicitado ao usuário
type Field struct {
	Name      string
	Kind      Kind
	Prompt    string
	Reprompt  string
	Order     int
	Validator Validator

	seq int
	get func(payload interface{}) (interface{}, bool, error)
	set func(payload, value interface{}) error
}

// IsSet indica se o campo já tem valor no payload
func (f Field) IsSet(payload interface{}) (bool, error) {
	_, ok, err := f.get(payload)
	return ok, err
}

// Value retorna o valor atual do campo
func (f Field) Value(payload interface{}) (interface{}, bool, error) {
	return f.get(payload)
}

// Set grava o valor no payload
func (f Field) Set(payload, value interface{}) error {
	return f.set(payload, value)
}

// Option configura um Field durante a declaração
type Option func(*Field)

// WithOrder define a ordem de coleta. Empates seguem a ordem de declaração.
func WithOrder(order int) Option {
	return func(f *Field) { f.Order = order }
}

// WithReprompt define o texto usado quando a resposta é inválida
func WithReprompt(text string) Option {
	return func(f *Field) { f.Reprompt = text }
}

// WithValidator define uma validação adicional para o valor reconhecido
func WithValidator(v Validator) Option {
	return func(f *Field) { f.Validator = v }
}

// FieldSet é a lista ordenada e imutável de campos de um tipo de contexto
type FieldSet struct {
	fields []Field
}

// Len retorna a quantidade de campos
func (s *FieldSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.fields)
}

// At retorna o campo na posição i (na ordem de coleta)
func (s *FieldSet) At(i int) Field {
	return s.fields[i]
}

// Names retorna os nomes na ordem de coleta
func (s *FieldSet) Names() []string {
	names := make([]string, 0, s.Len())
	for i := 0; i < s.Len(); i++ {
		names = append(names, s.fields[i].Name)
	}
	return names
}

// Builder declara os campos de um payload do tipo T
type Builder[T any] struct {
	fields []Field
	errs   []error
}

// For inicia a declaração dos campos de um payload do tipo T (normalmente um ponteiro para struct)
func For[T any]() *Builder[T] {
	return &Builder[T]{}
}

// Text declara um campo de texto
func (b *Builder[T]) Text(name, text string, field func(T) **string, opts ...Option) *Builder[T] {
	return add(b, name, KindText, text, field, opts)
}

// Int declara um campo inteiro (faixa int32)
func (b *Builder[T]) Int(name, text string, field func(T) **int, opts ...Option) *Builder[T] {
	return add(b, name, KindInt, text, field, opts)
}

// Double declara um campo de ponto flutuante
func (b *Builder[T]) Double(name, text string, field func(T) **float64, opts ...Option) *Builder[T] {
	return add(b, name, KindDouble, text, field, opts)
}

// Bool declara um campo sim/não
func (b *Builder[T]) Bool(name, text string, field func(T) **bool, opts ...Option) *Builder[T] {
	return add(b, name, KindBool, text, field, opts)
}

// Date declara um campo de data
func (b *Builder[T]) Date(name, text string, field func(T) **time.Time, opts ...Option) *Builder[T] {
	return add(b, name, KindDate, text, field, opts)
}

func add[T, V any](b *Builder[T], name string, kind Kind, text string, field func(T) **V, opts []Option) *Builder[T] {
	if field == nil {
		b.errs = append(b.errs, fmt.Errorf("%w: %s", ErrNilAccessor, name))
		return b
	}

	f := Field{
		Name:   name,
		Kind:   kind,
		Prompt: text,
		seq:    len(b.fields),
		get: func(payload interface{}) (interface{}, bool, error) {
			p, ok := payload.(T)
			if !ok {
				return nil, false, fmt.Errorf("%w: campo %s espera %T, recebeu %T", ErrFieldType, name, *new(T), payload)
			}
			ptr := field(p)
			if *ptr == nil {
				return nil, false, nil
			}
			return **ptr, true, nil
		},
		set: func(payload, value interface{}) error {
			p, ok := payload.(T)
			if !ok {
				return fmt.Errorf("%w: campo %s espera %T, recebeu %T", ErrFieldType, name, *new(T), payload)
			}
			v, ok := value.(V)
			if !ok {
				return fmt.Errorf("%w: campo %s (%s) recebeu %T", ErrFieldType, name, kind, value)
			}
			*field(p) = &v
			return nil
		},
	}
	for _, opt := range opts {
		opt(&f)
	}
	if strings.TrimSpace(f.Reprompt) == "" {
		f.Reprompt = f.Prompt
	}

	b.fields = append(b.fields, f)
	return b
}

// Build valida e ordena os campos
func (b *Builder[T]) Build() (*FieldSet, error) {
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}
	if len(b.fields) == 0 {
		return nil, fmt.Errorf("%w em %T", ErrNoFields, *new(T))
	}

	seen := make(map[string]bool, len(b.fields))
	for _, f := range b.fields {
		if strings.TrimSpace(f.Name) == "" {
			return nil, ErrEmptyFieldName
		}
		if strings.TrimSpace(f.Prompt) == "" {
			return nil, fmt.Errorf("%w: %s", ErrEmptyPrompt, f.Name)
		}
		if seen[f.Name] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateField, f.Name)
		}
		seen[f.Name] = true
	}

	fields := make([]Field, len(b.fields))
	copy(fields, b.fields)
	sort.SliceStable(fields, func(i, j int) bool {
		if fields[i].Order != fields[j].Order {
			return fields[i].Order < fields[j].Order
		}
		return fields[i].seq < fields[j].seq
	})

	return &FieldSet{fields: fields}, nil
}

// MustBuild é como Build mas entra em pânico em caso de erro. Use apenas no registro de intenções.
func (b *Builder[T]) MustBuild() *FieldSet {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}
