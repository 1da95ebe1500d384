package wast

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// ModuleLoader resolves a script's filename reference to the bytes of the
// binary module it names. Parsing itself performs no file access; callers
// supply the loader that does.
type ModuleLoader func(filename string) ([]byte, error)

type jsonScript struct {
	SourceFilename string        `json:"source_filename"`
	Commands       []jsonCommand `json:"commands"`
}

type jsonCommand struct {
	Type     string      `json:"type"`
	Line     int         `json:"line"`
	Filename string      `json:"filename"`
	Name     string      `json:"name"`
	As       string      `json:"as"`
	ModuleType string    `json:"module_type"`
	Text     string      `json:"text"`
	Action   *jsonAction `json:"action"`
	Expected []jsonValue `json:"expected"`
}

type jsonAction struct {
	Type   string      `json:"type"`
	Module string      `json:"module"`
	Field  string      `json:"field"`
	Args   []jsonValue `json:"args"`
}

type jsonValue struct {
	Type  string `json:"type"`
	Value string `json:"value"`
	Lane  string `json:"lane_type"`
}

// ParseScript decodes the JSON script dialect produced by the conformance
// test tooling: a source_filename and a flat command list, where module
// commands carry a filename reference rather than inline source text. load
// is invoked once per module/assert_malformed/assert_invalid/
// assert_unlinkable command to fetch that module's encoded bytes.
func ParseScript(r io.Reader, load ModuleLoader) (*Script, error) {
	var js jsonScript
	if err := json.NewDecoder(r).Decode(&js); err != nil {
		return nil, fmt.Errorf("decoding script: %w", err)
	}

	// named modules are referenced by later register/invoke/get commands
	// under the $Name given to the preceding module command.
	named := map[string]ModuleCommand{}
	var last ModuleCommand

	script := &Script{}
	for _, c := range js.Commands {
		pos := Pos{Line: c.Line}

		switch c.Type {
		case "module":
			data, err := load(c.Filename)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", c.Line, err)
			}
			m := &ModuleLiteral{Pos: pos, Name: c.Name, Data: data, TextForm: c.ModuleType == "text"}
			script.Commands = append(script.Commands, m)
			last = m
			if c.Name != "" {
				named[c.Name] = m
			}

		case "assert_malformed", "assert_invalid", "assert_unlinkable":
			data, err := load(c.Filename)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", c.Line, err)
			}
			m := &ModuleLiteral{Pos: pos, Data: data, TextForm: c.ModuleType == "text"}

			kind := AssertMalformed
			switch c.Type {
			case "assert_invalid":
				kind = AssertInvalid
			case "assert_unlinkable":
				kind = AssertUnlinkable
			}
			script.Commands = append(script.Commands, &ModuleAssertion{
				Pos:     pos,
				Kind:    kind,
				Module:  m,
				Failure: c.Text,
			})

		case "register":
			script.Commands = append(script.Commands, &Register{
				Pos:    pos,
				Export: c.As,
				Name:   c.Name,
			})

		case "action":
			action, err := decodeAction(pos, c.Action, named, last)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", c.Line, err)
			}
			script.Commands = append(script.Commands, action)

		case "assert_return":
			action, err := decodeAction(pos, c.Action, named, last)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", c.Line, err)
			}
			results, err := decodeValues(c.Expected)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", c.Line, err)
			}
			script.Commands = append(script.Commands, &AssertReturn{
				Pos:     pos,
				Action:  action,
				Results: results,
			})

		case "assert_trap":
			action, err := decodeAction(pos, c.Action, named, last)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", c.Line, err)
			}
			script.Commands = append(script.Commands, &AssertTrap{
				Pos:     pos,
				Command: action,
				Failure: c.Text,
			})

		case "assert_exhaustion":
			action, err := decodeAction(pos, c.Action, named, last)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", c.Line, err)
			}
			script.Commands = append(script.Commands, &AssertExhaustion{
				Pos:     pos,
				Action:  action,
				Failure: c.Text,
			})

		case "assert_return_canonical_nan", "assert_return_arithmetic_nan":
			action, err := decodeAction(pos, c.Action, named, last)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", c.Line, err)
			}
			kind := CanonicalNaN
			if c.Type == "assert_return_arithmetic_nan" {
				kind = ArithmeticNaN
			}
			script.Commands = append(script.Commands, &AssertReturnNaN{
				Pos:    pos,
				Action: action,
				Kind:   kind,
			})

		default:
			return nil, fmt.Errorf("line %d: unknown command %q", c.Line, c.Type)
		}
	}

	return script, nil
}

func decodeAction(pos Pos, a *jsonAction, named map[string]ModuleCommand, last ModuleCommand) (Action, error) {
	if a == nil {
		return nil, fmt.Errorf("command requires an action")
	}

	module := last
	if a.Module != "" {
		m, ok := named[a.Module]
		if !ok {
			return nil, fmt.Errorf("unknown module %q", a.Module)
		}
		module = m
	}
	name := ""
	if module != nil {
		name = module.ModuleName()
	}

	switch a.Type {
	case "invoke":
		args, err := decodeValues(a.Args)
		if err != nil {
			return nil, err
		}
		return &Invoke{Pos: pos, Name: name, Export: a.Field, Args: args}, nil
	case "get":
		return &Get{Pos: pos, Name: name, Export: a.Field}, nil
	default:
		return nil, fmt.Errorf("unknown action %q", a.Type)
	}
}

func decodeValues(vs []jsonValue) ([]interface{}, error) {
	out := make([]interface{}, len(vs))
	for i, v := range vs {
		val, err := decodeValue(v)
		if err != nil {
			return nil, err
		}
		out[i] = val
	}
	return out, nil
}

// decodeSpecialFloat recognizes the non-numeric float literals wast2json
// writes for an expected value: nan:canonical/nan:arithmetic (any bit
// pattern in that NaN class, never executed against so the exact payload
// doesn't matter here) and inf/-inf. Returns ok=false for anything else,
// leaving the caller to parse the value as an encoded bit pattern.
func decodeSpecialFloat(value string) (float64, bool) {
	switch {
	case strings.HasPrefix(value, "nan:"):
		return math.NaN(), true
	case value == "inf":
		return math.Inf(1), true
	case value == "-inf":
		return math.Inf(-1), true
	default:
		return 0, false
	}
}

// decodeValue converts one typed literal from the conformance test's
// string-encoded number (chosen upstream so i64 and f64 bit patterns survive
// JSON's float64 number type intact) into a native Go value.
func decodeValue(v jsonValue) (interface{}, error) {
	switch v.Type {
	case "i32":
		n, err := strconv.ParseUint(v.Value, 10, 32)
		if err != nil {
			return nil, err
		}
		return int32(uint32(n)), nil
	case "i64":
		n, err := strconv.ParseUint(v.Value, 10, 64)
		if err != nil {
			return nil, err
		}
		return int64(n), nil
	case "f32":
		if f, ok := decodeSpecialFloat(v.Value); ok {
			return float32(f), nil
		}
		n, err := strconv.ParseUint(v.Value, 10, 32)
		if err != nil {
			return nil, err
		}
		return math.Float32frombits(uint32(n)), nil
	case "f64":
		if f, ok := decodeSpecialFloat(v.Value); ok {
			return f, nil
		}
		n, err := strconv.ParseUint(v.Value, 10, 64)
		if err != nil {
			return nil, err
		}
		return math.Float64frombits(n), nil
	case "funcref", "externref":
		if v.Value == "null" {
			return nil, nil
		}
		n, err := strconv.ParseUint(v.Value, 10, 32)
		if err != nil {
			return nil, err
		}
		return uint32(n), nil
	default:
		return nil, fmt.Errorf("unsupported value type %q", v.Type)
	}
}
