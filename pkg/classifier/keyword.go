// Package classifier implementa classificadores de intenção: um classificador por palavras-chave,
// configurado por um catálogo YAML, e um classificador baseado no Claude.
package classifier

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

// ErrEmptyCatalog é retornado quando o catálogo não tem regras
var ErrEmptyCatalog = errors.New("catálogo de intenções vazio")

// Rule associa frases a uma intenção
type Rule struct {
	Intent  string   `yaml:"intent"`
	Phrases []string `yaml:"phrases"`
}

// Catalog é o catálogo de frases por intenção. A primeira regra que casar vence.
type Catalog struct {
	Rules []Rule `yaml:"intents"`
}

// ParseCatalog lê um catálogo em YAML
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("erro ao ler catálogo de intenções: %w", err)
	}
	if len(c.Rules) == 0 {
		return nil, ErrEmptyCatalog
	}
	return &c, nil
}

// LoadCatalogFile lê um catálogo de um arquivo YAML
func LoadCatalogFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("erro ao abrir catálogo %s: %w", path, err)
	}
	return ParseCatalog(data)
}

// Intents retorna os nomes das intenções do catálogo
func (c *Catalog) Intents() []string {
	names := make([]string, 0, len(c.Rules))
	for _, r := range c.Rules {
		names = append(names, r.Intent)
	}
	return names
}

type compiledRule struct {
	intent  string
	phrases []string
}

// Keyword classifica por frases inteiras contidas na mensagem
type Keyword struct {
	rules []compiledRule
}

// NewKeyword cria o classificador a partir do catálogo
func NewKeyword(c *Catalog) (*Keyword, error) {
	if c == nil || len(c.Rules) == 0 {
		return nil, ErrEmptyCatalog
	}

	k := &Keyword{}
	for i, r := range c.Rules {
		if strings.TrimSpace(r.Intent) == "" {
			return nil, fmt.Errorf("regra %d sem intenção", i)
		}
		cr := compiledRule{intent: r.Intent}
		for _, p := range r.Phrases {
			if n := normalize(p); n != "" {
				cr.phrases = append(cr.phrases, n)
			}
		}
		if len(cr.phrases) == 0 {
			return nil, fmt.Errorf("regra %s sem frases", r.Intent)
		}
		k.rules = append(k.rules, cr)
	}
	return k, nil
}

// Classify implementa dialog.Classifier. Retorna vazio quando nenhuma regra casa.
func (k *Keyword) Classify(ctx context.Context, utterance string) (string, error) {
	text := " " + normalize(utterance) + " "
	for _, r := range k.rules {
		for _, p := range r.phrases {
			if strings.Contains(text, " "+p+" ") {
				return r.intent, nil
			}
		}
	}
	return "", nil
}

// normalize deixa apenas letras e dígitos em minúsculas, separados por um espaço
func normalize(s string) string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.Join(fields, " ")
}
