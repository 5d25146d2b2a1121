package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/carlosnayan/onela-go/builder"
)

// Request kinds accepted by --kind
const (
	KindSelect      = "select"
	KindCount       = "count"
	KindUpdate      = "update"
	KindDelete      = "delete"
	KindInsert      = "insert"
	KindBatchInsert = "batch-insert"
	KindAggregate   = "aggregate"
)

// Kinds lists the request kinds in help order
var Kinds = []string{KindSelect, KindCount, KindUpdate, KindDelete, KindInsert, KindBatchInsert, KindAggregate}

// readInput reads path ("-" for stdin) and reports its format from the
// extension: yaml for .yaml/.yml, json otherwise
func readInput(path string) ([]byte, string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, "", err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return data, "yaml", nil
	}
	return data, "json", nil
}

// decode reads JSON or YAML into v using v's json tags. YAML is converted
// to JSON first so both formats share one set of field names.
func decode(data []byte, format string, v any) error {
	if format == "yaml" {
		var raw any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("invalid yaml: %w", err)
		}
		converted, err := json.Marshal(raw)
		if err != nil {
			return fmt.Errorf("invalid yaml: %w", err)
		}
		data = converted
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("invalid %s request: %w", format, err)
	}
	return nil
}

// decodeRequest decodes the params struct for kind
func decodeRequest(kind string, data []byte, format string) (any, error) {
	var req any
	switch kind {
	case KindSelect, KindCount:
		req = &builder.QueryParams{}
	case KindUpdate:
		req = &builder.UpdateParams{}
	case KindDelete:
		req = &builder.DeleteParams{}
	case KindInsert:
		req = &builder.InsertParams{}
	case KindBatchInsert:
		req = &builder.BatchInsertParams{}
	case KindAggregate:
		req = &builder.AggregateParams{}
	default:
		return nil, fmt.Errorf("unknown kind %q (want one of %s)", kind, strings.Join(Kinds, ", "))
	}
	if err := decode(data, format, req); err != nil {
		return nil, err
	}
	return req, nil
}

// build compiles a decoded request
func build(b *builder.Builder, kind string, req any) (*builder.Built, error) {
	// report every problem of the request at once
	if v, ok := req.(interface{ Validate() error }); ok {
		if err := v.Validate(); err != nil {
			return nil, err
		}
	}

	switch p := req.(type) {
	case *builder.QueryParams:
		if kind == KindCount {
			return b.BuildCount(*p)
		}
		return b.BuildSelect(*p)
	case *builder.UpdateParams:
		return b.BuildUpdate(*p)
	case *builder.DeleteParams:
		return b.BuildDelete(*p)
	case *builder.InsertParams:
		return b.BuildInsert(*p)
	case *builder.BatchInsertParams:
		return b.BuildBatchInsert(*p)
	case *builder.AggregateParams:
		return b.BuildAggregate(*p)
	}
	return nil, fmt.Errorf("unsupported request %T", req)
}

// tableOf returns the configs.tableName of a decoded request
func tableOf(req any) string {
	switch p := req.(type) {
	case *builder.QueryParams:
		return p.Configs.TableName
	case *builder.UpdateParams:
		return p.Configs.TableName
	case *builder.DeleteParams:
		return p.Configs.TableName
	case *builder.InsertParams:
		return p.Configs.TableName
	case *builder.BatchInsertParams:
		return p.Configs.TableName
	case *builder.AggregateParams:
		return p.Configs.TableName
	}
	return ""
}

func printJSON(v any) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
