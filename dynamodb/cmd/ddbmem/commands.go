package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/acksell/dynamini/dynamodb/ddbstore"
	"github.com/acksell/dynamini/dynamodb/table"
	"github.com/acksell/dynamini/dynamodb/val"
	"go.uber.org/zap"
)

// common holds the flags every command shares.
type common struct {
	schemas  string
	fixtures string
	verbose  bool
}

func newFlagSet(name, usage string, c *common) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.StringVar(&c.schemas, "schemas", "", "glob of schema files (default: discover schema_dynamodb.yaml files)")
	fs.StringVar(&c.fixtures, "fixtures", "", "YAML or JSON file of items to load")
	fs.BoolVar(&c.verbose, "verbose", false, "log store debug output")
	fs.Usage = func() {
		fmt.Printf("ddbmem %s - %s\n\nUsage:\n  ddbmem %s [flags]\n\nFlags:\n", name, usage, name)
		fs.PrintDefaults()
	}
	return fs
}

// open builds the store from the schema and fixture flags, falling back to
// ddbmem.yaml for flags that were not given.
func (c *common) open() (*ddbstore.Store, func(), error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("load %s: %w", configFilename, err)
	}
	if c.schemas == "" {
		c.schemas = cfg.Schemas
	}
	if c.fixtures == "" {
		c.fixtures = cfg.Fixtures
	}

	logCfg := zap.NewDevelopmentConfig()
	if !c.verbose {
		logCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	log, err := logCfg.Build()
	if err != nil {
		return nil, nil, err
	}
	done := func() { _ = log.Sync() }

	defs, err := c.loadSchemas()
	if err != nil {
		return nil, nil, err
	}
	opts := ddbstore.DefaultOptions()
	opts.Logger = log
	store, err := ddbstore.New(opts, defs...)
	if err != nil {
		return nil, nil, err
	}
	log.Debug("declared tables", zap.Strings("tables", store.Tables()))

	if c.fixtures != "" {
		fx, err := LoadFixtures(c.fixtures)
		if err != nil {
			return nil, nil, err
		}
		n, err := fx.Seed(store)
		if err != nil {
			return nil, nil, err
		}
		log.Info("loaded fixtures", zap.String("file", c.fixtures), zap.Int("items", n))
	}
	return store, done, nil
}

func (c *common) loadSchemas() ([]table.TableDefinition, error) {
	if c.schemas != "" {
		return table.LoadSchemas(c.schemas)
	}
	files, err := discoverSchemas(".")
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no %s files found, pass --schemas", schemaFilename)
	}
	return table.LoadSchemaFiles(files)
}

func runTables(args []string) error {
	var c common
	fs := newFlagSet("tables", "list the loaded tables and their key schemas", &c)
	if err := fs.Parse(args); err != nil {
		return err
	}
	store, done, err := c.open()
	if err != nil {
		return err
	}
	defer done()

	for _, name := range store.Tables() {
		def, err := store.Definition(name)
		if err != nil {
			return err
		}
		count, err := store.Count(name)
		if err != nil {
			return err
		}
		fmt.Printf("%s  %s  (%d items)\n", name, formatKeys(def.KeyDefinitions), count)
		for _, idx := range def.Indexes {
			fmt.Printf("  index %s  %s\n", idx.Name, formatKeys(idx.KeyDefinitions))
		}
	}
	return nil
}

func runGet(args []string) error {
	var c common
	fs := newFlagSet("get", "read one item by key", &c)
	tableName := fs.String("table", "", "table name")
	hash := fs.String("hash", "", "partition key value")
	rng := fs.String("range", "", "sort key value")
	if err := fs.Parse(args); err != nil {
		return err
	}
	store, done, err := c.open()
	if err != nil {
		return err
	}
	defer done()

	def, err := store.Definition(*tableName)
	if err != nil {
		return err
	}
	keys := def.KeyDefinitions
	key := table.Key{}
	if key.Hash, err = parseKeyValue(keys.PartitionKey, *hash); err != nil {
		return err
	}
	if keys.HasSortKey() {
		if key.Range, err = parseKeyValue(keys.SortKey, *rng); err != nil {
			return err
		}
	}
	item, err := store.Get(*tableName, key)
	if err != nil {
		return err
	}
	printItems(os.Stdout, []val.Item{item})
	return nil
}

func runQuery(args []string) error {
	var c common
	fs := newFlagSet("query", "query a table or index by key condition", &c)
	tableName := fs.String("table", "", "table name")
	indexName := fs.String("index", "", "index name")
	hash := fs.String("hash", "", "partition key value")
	ge := fs.String("ge", "", "sort key lower bound, inclusive")
	le := fs.String("le", "", "sort key upper bound, inclusive")
	reverse := fs.Bool("reverse", false, "descending sort key order")
	limit := fs.Int("limit", 0, "maximum number of items")
	if err := fs.Parse(args); err != nil {
		return err
	}
	store, done, err := c.open()
	if err != nil {
		return err
	}
	defer done()

	def, err := store.Definition(*tableName)
	if err != nil {
		return err
	}
	keys := def.KeyDefinitions
	if *indexName != "" {
		idx, ok := def.Index(*indexName)
		if !ok {
			return fmt.Errorf("table %s has no index %q", *tableName, *indexName)
		}
		keys = idx.KeyDefinitions
	}

	cond := ddbstore.KeyCondition{HashKeyName: keys.PartitionKey.Name}
	if cond.HashValue, err = parseKeyValue(keys.PartitionKey, *hash); err != nil {
		return err
	}
	if cond.Range, err = rangeCondition(keys.SortKey, *ge, *le); err != nil {
		return err
	}
	out, err := store.Query(ddbstore.QueryInput{
		TableName: *tableName,
		IndexName: *indexName,
		Condition: cond,
		Limit:     *limit,
		Reverse:   *reverse,
	})
	if err != nil {
		return err
	}
	printItems(os.Stdout, out.Items)
	return nil
}

func rangeCondition(sk table.KeyDef, ge, le string) (*ddbstore.RangeCondition, error) {
	if ge == "" && le == "" {
		return nil, nil
	}
	var lower, upper val.Value
	var err error
	if ge != "" {
		if lower, err = parseKeyValue(sk, ge); err != nil {
			return nil, err
		}
	}
	if le != "" {
		if upper, err = parseKeyValue(sk, le); err != nil {
			return nil, err
		}
	}
	switch {
	case ge != "" && le != "":
		return ddbstore.Between(sk.Name, lower, upper), nil
	case ge != "":
		return ddbstore.GreaterOrEqual(sk.Name, lower), nil
	default:
		return ddbstore.LessOrEqual(sk.Name, upper), nil
	}
}

func runScan(args []string) error {
	var c common
	fs := newFlagSet("scan", "scan a table or index", &c)
	tableName := fs.String("table", "", "table name")
	indexName := fs.String("index", "", "index name")
	limit := fs.Int("limit", 0, "page size; all pages are printed")
	segment := fs.Int("segment", -1, "segment to scan, requires --total-segments")
	total := fs.Int("total-segments", -1, "number of segments")
	if err := fs.Parse(args); err != nil {
		return err
	}
	store, done, err := c.open()
	if err != nil {
		return err
	}
	defer done()

	in := ddbstore.ScanInput{TableName: *tableName, IndexName: *indexName, Limit: *limit}
	if *segment >= 0 {
		in.Segment = segment
	}
	if *total >= 0 {
		in.TotalSegments = total
	}
	for page := 1; ; page++ {
		out, err := store.Scan(in)
		if err != nil {
			return err
		}
		if *limit > 0 {
			fmt.Printf("# page %d\n", page)
		}
		printItems(os.Stdout, out.Items)
		if out.LastEvaluatedKey == nil {
			return nil
		}
		in.StartKey = out.LastEvaluatedKey
	}
}

// parseKeyValue reads a key value given on the command line. Number keys are
// parsed as numbers; keys of either kind are numbers when they parse as one.
func parseKeyValue(def table.KeyDef, s string) (val.Value, error) {
	if s == "" {
		return val.Value{}, fmt.Errorf("a value for key %q is required", def.Name)
	}
	switch def.Kind {
	case table.KeyKindS:
		return val.String(s), nil
	case table.KeyKindN:
		return val.ParseNumber(s)
	default:
		if n, err := val.ParseNumber(s); err == nil {
			return n, nil
		}
		return val.String(s), nil
	}
}

func formatKeys(keys table.PrimaryKeyDefinition) string {
	parts := []string{formatKeyDef(keys.PartitionKey)}
	if keys.HasSortKey() {
		parts = append(parts, formatKeyDef(keys.SortKey))
	}
	return strings.Join(parts, " / ")
}

func formatKeyDef(k table.KeyDef) string {
	if k.Kind == table.KeyKindAny {
		return k.Name
	}
	return fmt.Sprintf("%s (%s)", k.Name, k.Kind)
}

func printItems(w io.Writer, items []val.Item) {
	for _, item := range items {
		fmt.Fprintln(w, formatItem(item))
	}
}

func formatItem(item val.Item) string {
	names := item.Names()
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + ": " + item[name].String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
