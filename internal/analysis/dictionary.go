package analysis

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Keyword is a dictionary term and the strength or weakness it stands for.
type Keyword struct {
	Term        string `yaml:"term" json:"term"`
	Description string `yaml:"description" json:"description"`
}

// Dictionaries holds the positive and negative keyword lists. Order matters:
// it breaks ties between hits with equal counts.
type Dictionaries struct {
	Positive []Keyword `yaml:"positive" json:"positive"`
	Negative []Keyword `yaml:"negative" json:"negative"`
}

// ErrEmptyTerm reports a dictionary entry without a term.
var ErrEmptyTerm = errors.New("keyword term is empty")

func DefaultPositive() []Keyword {
	return []Keyword{
		{"quality", "excellent quality"},
		{"great", "performs great"},
		{"excellent", "outstanding performance"},
		{"perfect", "flawless experience"},
		{"fast", "fast"},
		{"amazing", "impressive"},
		{"love", "loved by users"},
		{"best", "best choice"},
		{"good", "good"},
		{"worth", "worth the money"},
		{"value", "good value"},
		{"recommend", "recommended"},
		{"powerful", "powerful"},
		{"compact", "compact and portable"},
		{"durable", "durable"},
		{"comfortable", "comfortable"},
		{"clear", "clear"},
		{"easy", "easy to use"},
	}
}

func DefaultNegative() []Keyword {
	return []Keyword{
		{"bad", "poor quality"},
		{"poor", "underperforms"},
		{"disappointed", "disappointing"},
		{"waste", "waste of money"},
		{"broke", "breaks"},
		{"stopped", "stopped working"},
		{"problem", "has problems"},
		{"issue", "defects"},
		{"weak", "weak performance"},
		{"lost", "gets lost"},
		{"fail", "fails"},
		{"not work", "does not work"},
		{"stuck", "gets stuck"},
		{"slow", "slow"},
		{"complaint", "complaints"},
		{"difficult", "difficult"},
		{"complicated", "complicated"},
		{"delay", "delays"},
	}
}

// DefaultDictionaries returns fresh copies of the built-in lists.
func DefaultDictionaries() Dictionaries {
	return Dictionaries{Positive: DefaultPositive(), Negative: DefaultNegative()}
}

// LoadDictionaries reads a YAML file with "positive" and "negative" lists.
// A list the file omits falls back to the built-in one.
func LoadDictionaries(path string) (Dictionaries, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Dictionaries{}, fmt.Errorf("read keywords: %w", err)
	}
	d, err := ParseDictionaries(b)
	if err != nil {
		return Dictionaries{}, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

func ParseDictionaries(data []byte) (Dictionaries, error) {
	var d Dictionaries
	if err := yaml.Unmarshal(data, &d); err != nil {
		return Dictionaries{}, fmt.Errorf("parse keywords: %w", err)
	}
	if d.Positive == nil {
		d.Positive = DefaultPositive()
	}
	if d.Negative == nil {
		d.Negative = DefaultNegative()
	}
	for _, list := range []struct {
		name string
		kws  []Keyword
	}{{"positive", d.Positive}, {"negative", d.Negative}} {
		seen := map[string]bool{}
		for i, kw := range list.kws {
			t := strings.TrimSpace(kw.Term)
			if t == "" {
				return Dictionaries{}, fmt.Errorf("%s[%d]: %w", list.name, i, ErrEmptyTerm)
			}
			if seen[fold(t)] {
				return Dictionaries{}, fmt.Errorf("%s[%d]: duplicate term %q", list.name, i, t)
			}
			seen[fold(t)] = true
			list.kws[i].Term = t
			if kw.Description == "" {
				list.kws[i].Description = t
			}
		}
	}
	return d, nil
}
