package prompt

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidState é retornado quando o passo persistido não corresponde aos campos
var ErrInvalidState = errors.New("estado de coleta inválido")

// Textos da etapa de confirmação
const (
	ConfirmSuffix   = " (yes/no)"
	ConfirmReprompt = "Please answer yes or no."
)

// Status é o resultado de um passo da coleta
type Status int

const (
	// StatusWaiting indica que o prompt em Result.Prompt foi emitido e a coleta aguarda resposta
	StatusWaiting Status = iota
	// StatusCompleted indica que todos os campos foram preenchidos (e confirmados)
	StatusCompleted
	// StatusDeclined indica que o usuário recusou a confirmação
	StatusDeclined
)

func (s Status) String() string {
	switch s {
	case StatusWaiting:
		return "waiting"
	case StatusCompleted:
		return "completed"
	case StatusDeclined:
		return "declined"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Result é o retorno de Begin e Continue
type Result struct {
	Status Status
	Prompt string
	Field  string
}

// State é o token de retomada da coleta. Step == quantidade de campos indica que a confirmação
// está pendente.
type State struct {
	Step     int `json:"step"`
	Attempts int `json:"attempts"`
}

// Orchestrator conduz a coleta de um FieldSet, um campo por turno
type Orchestrator struct {
	fields *FieldSet
	now    func() time.Time
}

// NewOrchestrator cria um orquestrador para os campos informados
func NewOrchestrator(fields *FieldSet) *Orchestrator {
	return &Orchestrator{fields: fields, now: time.Now}
}

// WithClock substitui o relógio usado no reconhecimento de datas relativas
func (o *Orchestrator) WithClock(now func() time.Time) *Orchestrator {
	o.now = now
	return o
}

// Begin inicia a coleta, pulando campos já preenchidos
func (o *Orchestrator) Begin(payload interface{}, confirmation string, st *State) (Result, error) {
	*st = State{}
	return o.advance(payload, confirmation, st, 0)
}

// Continue retoma a coleta no passo pendente com a resposta do usuário
func (o *Orchestrator) Continue(payload interface{}, confirmation string, st *State, reply string) (Result, error) {
	n := o.fields.Len()
	if st.Step < 0 || st.Step > n {
		return Result{}, fmt.Errorf("%w: passo %d de %d", ErrInvalidState, st.Step, n)
	}

	if st.Step == n {
		return o.confirm(confirmation, st, reply), nil
	}

	f := o.fields.At(st.Step)
	value, ok := Recognize(f.Kind, reply, o.now())
	if ok && f.Validator != nil && !f.Validator(value) {
		ok = false
	}
	if !ok {
		st.Attempts++
		return Result{Status: StatusWaiting, Prompt: f.Reprompt, Field: f.Name}, nil
	}

	if err := f.Set(payload, value); err != nil {
		return Result{}, err
	}
	return o.advance(payload, confirmation, st, st.Step+1)
}

func (o *Orchestrator) advance(payload interface{}, confirmation string, st *State, from int) (Result, error) {
	n := o.fields.Len()
	for i := from; i < n; i++ {
		f := o.fields.At(i)
		set, err := f.IsSet(payload)
		if err != nil {
			return Result{}, err
		}
		if !set {
			st.Step, st.Attempts = i, 0
			return Result{Status: StatusWaiting, Prompt: f.Prompt, Field: f.Name}, nil
		}
	}

	st.Step, st.Attempts = n, 0
	if confirmation != "" {
		return Result{Status: StatusWaiting, Prompt: confirmation + ConfirmSuffix}, nil
	}
	return Result{Status: StatusCompleted}, nil
}

func (o *Orchestrator) confirm(confirmation string, st *State, reply string) Result {
	if confirmation == "" {
		return Result{Status: StatusCompleted}
	}

	yes, ok := recognizeBool(reply)
	if !ok {
		st.Attempts++
		return Result{Status: StatusWaiting, Prompt: ConfirmReprompt}
	}
	if !yes {
		return Result{Status: StatusDeclined}
	}
	return Result{Status: StatusCompleted}
}
