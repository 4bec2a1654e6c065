package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// ErrInvalidRules - файл правил не прошёл проверку схемы
var ErrInvalidRules = errors.New("invalid rule tables")

//go:embed rules.schema.json
var rulesSchemaJSON []byte

const rulesSchemaURL = "rules.schema.json"

var (
	rulesSchemaOnce sync.Once
	rulesSchema     *jsonschema.Schema
	rulesSchemaErr  error
)

// RuleSpec - описание правила автоматической добычи в файле правил
type RuleSpec struct {
	Name      string            `yaml:"name"`
	Match     string            `yaml:"match"` // exact | class
	Shape     string            `yaml:"shape"` // volumetric | planar
	MaxBlocks int               `yaml:"max_blocks"`
	Tools     []string          `yaml:"tools"`
	Yields    map[string]string `yaml:"yields"`
}

// RulesFile - корень файла правил
type RulesFile struct {
	Rules []RuleSpec `yaml:"rules"`
}

func compiledRulesSchema() (*jsonschema.Schema, error) {
	rulesSchemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		if err := c.AddResource(rulesSchemaURL, bytes.NewReader(rulesSchemaJSON)); err != nil {
			rulesSchemaErr = err
			return
		}
		rulesSchema, rulesSchemaErr = c.Compile(rulesSchemaURL)
	})
	return rulesSchema, rulesSchemaErr
}

// ParseRules проверяет YAML правил по встроенной JSON-схеме и разбирает его
func ParseRules(data []byte) (*RulesFile, error) {
	schema, err := compiledRulesSchema()
	if err != nil {
		return nil, fmt.Errorf("compile rules schema: %w", err)
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRules, err)
	}

	// Схема проверяет JSON-представление документа
	asJSON, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRules, err)
	}
	dec := json.NewDecoder(bytes.NewReader(asJSON))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRules, err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRules, err)
	}

	var file RulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRules, err)
	}
	return &file, nil
}

// LoadRules читает и проверяет файл правил
func LoadRules(path string) (*RulesFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules %s: %w", path, err)
	}
	return ParseRules(data)
}
