// Package usecase contains application business logic services.
package usecase

import (
	_ "embed"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/Abiads/talentscout/internal/domain"
)

//go:embed bank.yaml
var bankYAML []byte

type bankEntry struct {
	Key       string   `yaml:"key"`
	Questions []string `yaml:"questions"`
}

var (
	bankOnce sync.Once
	bank     []bankEntry
)

// questionBank returns the curated per-technology question sets in their
// declared order. The YAML is embedded at build time; a parse failure here is
// a programming error and panics on first use.
func questionBank() []bankEntry {
	bankOnce.Do(func() {
		if err := yaml.Unmarshal(bankYAML, &bank); err != nil {
			panic("usecase: malformed embedded question bank: " + err.Error())
		}
	})
	return bank
}

// BankQuestions returns all curated questions whose bank key matches any of
// the declared technologies. Matching is bidirectional substring containment:
// "python3" matches the "python" bank and "js" does not match "javascript".
// Banks are concatenated in tech-stack declaration order.
func BankQuestions(techStack []string) []domain.Question {
	var out []domain.Question
	for _, tech := range techStack {
		t := strings.ToLower(strings.TrimSpace(tech))
		if t == "" {
			continue
		}
		for _, entry := range questionBank() {
			if strings.Contains(t, entry.Key) || strings.Contains(entry.Key, t) {
				for _, q := range entry.Questions {
					out = append(out, domain.Question{Text: q, Topics: []string{entry.Key}})
				}
			}
		}
	}
	return out
}
