package pipeline

import (
	"fmt"
	"os"

	"github.com/grafo-ai/grafo/providers/vectorstore"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Config is the parsed YAML description of an ingestion pipeline: an
// ordered module list, named constants and elements referenced from module
// params, and the vector store the pipeline writes to.
//
// Example:
//
//	collection_name: articles
//	vector_store:
//	  type: memstore
//	constants:
//	  table_prompt: "You caption tables."
//	elements:
//	  inner_splitter:
//	    type: text_splitter
//	    params:
//	      max_char: 2000
//	modules:
//	  - type: text_splitter
//	    params:
//	      max_char: 300
//	  - type: table_captioner
//	    params:
//	      system_prompt:
//	        constant: table_prompt
//	      splitter:
//	        element: inner_splitter
type Config struct {
	CollectionName string                     `yaml:"collection_name"`
	VectorStore    *ComponentConfig           `yaml:"vector_store"`
	Constants      map[string]any             `yaml:"constants"`
	Elements       map[string]ComponentConfig `yaml:"elements"`
	Modules        []ComponentConfig          `yaml:"modules"`
}

// ComponentConfig names a registered component type and its parameters.
type ComponentConfig struct {
	Type   string         `yaml:"type"`
	Params map[string]any `yaml:"params"`
}

// ModuleFactory builds a chain module from its resolved params. Factories
// typically decode params into a typed config via DecodeParams.
type ModuleFactory func(params map[string]any) (Runner, error)

// StoreFactory builds a vector store from its resolved params.
type StoreFactory func(params map[string]any) (vectorstore.Store, error)

// Registry maps component type names, as they appear in YAML, to the
// factories that build them.
type Registry struct {
	modules map[string]ModuleFactory
	stores  map[string]StoreFactory
}

// NewRegistry creates an empty component registry.
func NewRegistry() *Registry {
	return &Registry{
		modules: make(map[string]ModuleFactory),
		stores:  make(map[string]StoreFactory),
	}
}

// RegisterModule binds a module type name to its factory and returns the
// registry for chaining.
func (registry *Registry) RegisterModule(typeName string, factory ModuleFactory) *Registry {
	registry.modules[typeName] = factory
	return registry
}

// RegisterStore binds a vector store type name to its factory and returns
// the registry for chaining.
func (registry *Registry) RegisterStore(typeName string, factory StoreFactory) *Registry {
	registry.stores[typeName] = factory
	return registry
}

func (registry *Registry) buildModule(typeName string, params map[string]any) (Runner, error) {
	factory, registered := registry.modules[typeName]
	if !registered {
		return nil, fmt.Errorf("unknown module type %q", typeName)
	}
	module, err := factory(params)
	if err != nil {
		return nil, fmt.Errorf("build module %q: %w", typeName, err)
	}
	return module, nil
}

func (registry *Registry) buildStore(typeName string, params map[string]any) (vectorstore.Store, error) {
	factory, registered := registry.stores[typeName]
	if !registered {
		return nil, fmt.Errorf("unknown vector store type %q", typeName)
	}
	store, err := factory(params)
	if err != nil {
		return nil, fmt.Errorf("build vector store %q: %w", typeName, err)
	}
	return store, nil
}

// LoadConfig reads and parses a YAML pipeline description from path.
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pipeline config: %w", err)
	}
	return ParseConfig(raw)
}

// ParseConfig parses a YAML pipeline description.
func ParseConfig(raw []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(raw, &config); err != nil {
		return nil, fmt.Errorf("parse pipeline config: %w", err)
	}
	return &config, nil
}

// Build assembles the ingestion pipeline the config describes. Elements
// are instantiated first so modules can reference them by name; module
// params may also reference constants. The vector store section is
// optional.
func (config *Config) Build(registry *Registry) (*Ingestion, error) {
	if registry == nil {
		return nil, fmt.Errorf("build requires a registry")
	}

	elements := make(map[string]Runner, len(config.Elements))
	for name, elementConfig := range config.Elements {
		params, err := config.resolveParams(elementConfig.Params, nil)
		if err != nil {
			return nil, fmt.Errorf("element %q: %w", name, err)
		}
		element, err := registry.buildModule(elementConfig.Type, params)
		if err != nil {
			return nil, fmt.Errorf("element %q: %w", name, err)
		}
		elements[name] = element
	}

	modules := make([]Runner, 0, len(config.Modules))
	for index, moduleConfig := range config.Modules {
		params, err := config.resolveParams(moduleConfig.Params, elements)
		if err != nil {
			return nil, fmt.Errorf("module %d: %w", index, err)
		}
		module, err := registry.buildModule(moduleConfig.Type, params)
		if err != nil {
			return nil, fmt.Errorf("module %d: %w", index, err)
		}
		modules = append(modules, module)
	}

	var store vectorstore.Store
	if config.VectorStore != nil {
		params, err := config.resolveParams(config.VectorStore.Params, nil)
		if err != nil {
			return nil, fmt.Errorf("vector store: %w", err)
		}
		store, err = registry.buildStore(config.VectorStore.Type, params)
		if err != nil {
			return nil, err
		}
	}

	return NewIngestion(modules, store, config.CollectionName), nil
}

// resolveParams copies params, replacing {constant: name} references with
// the config's constants and {element: name} references with instantiated
// elements. References are recognized at param-value position only.
func (config *Config) resolveParams(params map[string]any, elements map[string]Runner) (map[string]any, error) {
	resolved := make(map[string]any, len(params))
	for name, value := range params {
		reference, isMap := value.(map[string]any)
		if !isMap || len(reference) != 1 {
			resolved[name] = value
			continue
		}

		if constantName, isConstant := reference["constant"].(string); isConstant {
			constant, declared := config.Constants[constantName]
			if !declared {
				return nil, fmt.Errorf("param %q references unknown constant %q", name, constantName)
			}
			resolved[name] = constant
			continue
		}

		if elementName, isElement := reference["element"].(string); isElement {
			element, declared := elements[elementName]
			if !declared {
				return nil, fmt.Errorf("param %q references unknown element %q", name, elementName)
			}
			resolved[name] = element
			continue
		}

		resolved[name] = value
	}
	return resolved, nil
}

// DecodeParams decodes a resolved params map into a typed config struct
// using mapstructure tags. Input is decoded weakly, so numeric YAML scalars
// fit the struct's declared numeric types.
func DecodeParams(params map[string]any, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("build params decoder: %w", err)
	}
	if err := decoder.Decode(params); err != nil {
		return fmt.Errorf("decode params: %w", err)
	}
	return nil
}
