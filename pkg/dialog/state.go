// Package dialog implementa a máquina de estados principal do bot: resolve a intenção, autentica
// quando necessário, coleta os campos pendentes e despacha o contexto para o handler.
package dialog

import (
	"github.com/hugohenrick/intentbot/pkg/intent"
	"github.com/hugohenrick/intentbot/pkg/oauth"
	"github.com/hugohenrick/intentbot/pkg/prompt"
)

// Phase é a fase em que a conversa está suspensa
type Phase string

const (
	PhaseIdle           Phase = "idle"
	PhaseAuthenticating Phase = "authenticating"
	PhaseCollecting     Phase = "collecting"
)

// State é o estado persistido da conversa entre turnos
type State struct {
	Phase   Phase            `json:"phase"`
	Intent  *intent.Snapshot `json:"intent,omitempty"`
	Auth    oauth.State      `json:"auth"`
	Collect prompt.State     `json:"collect"`
}

// Active indica se existe uma sequência em andamento
func (s *State) Active() bool {
	return s.Phase != "" && s.Phase != PhaseIdle
}

// Reset volta ao estado ocioso, descartando o contexto em andamento
func (s *State) Reset() {
	*s = State{Phase: PhaseIdle}
}
