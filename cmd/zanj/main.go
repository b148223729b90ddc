// Command zanj inspects ZANJ archives.
//
// Usage:
//
//	zanj info <archive>                metadata and external-item summary
//	zanj tree <archive>                recursive dump of the value tree
//	zanj cat <archive> <dotted.path>   resolve one path and print it as JSON
//	zanj flat <archive>                dump the tree as dotted-key lines
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	flag "github.com/spf13/pflag"

	"github.com/born-ml/zanj"
	"github.com/born-ml/zanj/internal/dotpath"
	"github.com/born-ml/zanj/internal/timing"
)

var (
	modeFlag = flag.String("mode", "lazy", "externals resolution mode: lazy or full")
	noVerify = flag.Bool("no-verify", false, "skip checksum validation of external members")
)

func main() {
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) < 2 {
		usage()
		os.Exit(2)
	}

	if !isatty.IsTerminal(os.Stdout.Fd()) {
		color.NoColor = true
	}

	var err error
	switch args[0] {
	case "info":
		err = cmdInfo(args[1])
	case "tree":
		err = cmdTree(args[1])
	case "cat":
		if len(args) < 3 {
			usage()
			os.Exit(2)
		}
		err = cmdCat(args[1], args[2])
	case "flat":
		err = cmdFlat(args[1])
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "zanj: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: zanj [flags] info|tree|flat <archive>")
	fmt.Fprintln(os.Stderr, "       zanj [flags] cat <archive> <dotted.path>")
	flag.PrintDefaults()
}

func open(path string) (*zanj.LoadedArchive, error) {
	mode, err := zanj.ParseMode(*modeFlag)
	if err != nil {
		return nil, err
	}
	opts := []zanj.Option{zanj.WithMode(mode)}
	if *noVerify {
		opts = append(opts, zanj.SkipChecksumValidation())
	}
	return zanj.Open(path, opts...)
}

func cmdInfo(path string) error {
	timer := timing.Start()
	z, err := open(path)
	if err != nil {
		return err
	}
	defer z.Close()
	elapsed := timer.Elapsed()

	meta := z.Metadata()
	n, _ := z.Len()

	bold := color.New(color.Bold)
	bold.Printf("%s\n", path)
	fmt.Printf("  mode:           %s\n", z.Mode())
	fmt.Printf("  opened in:      %s\n", elapsed)
	if meta.FormatVersion != "" {
		fmt.Printf("  format version: %s\n", meta.FormatVersion)
	}
	if meta.Created != "" {
		fmt.Printf("  created:        %s\n", meta.Created)
	}
	fmt.Printf("  root entries:   %d\n", n)
	fmt.Printf("  externals:      %d\n", len(meta.ExternalsInfo))

	keys := make([]string, 0, len(meta.ExternalsInfo))
	for k := range meta.ExternalsInfo {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		info := meta.ExternalsInfo[k]
		line := fmt.Sprintf("    %-30s %s", k, info.ItemType)
		if info.Checksum != "" {
			line += "  " + shorten(info.Checksum)
		}
		fmt.Println(line)
	}
	return nil
}

func shorten(checksum string) string {
	if len(checksum) > 12 {
		return checksum[:12] + "…"
	}
	return checksum
}

func cmdTree(path string) error {
	z, err := open(path)
	if err != nil {
		return err
	}
	defer z.Close()

	root, err := z.Root()
	if err != nil {
		return err
	}
	return printNode(root, 0)
}

var (
	keyColor  = color.New(color.FgCyan)
	typeColor = color.New(color.FgYellow)
)

func printNode(n *zanj.Node, depth int) error {
	indent := strings.Repeat("  ", depth)
	for key := range n.Keys() {
		val, err := n.Get(key)
		if err != nil {
			return err
		}
		label := fmt.Sprint(key)
		switch v := val.(type) {
		case *zanj.Node:
			kind := "sequence"
			if v.IsMapping() {
				kind = "mapping"
			}
			fmt.Printf("%s%s: %s\n", indent, keyColor.Sprint(label), typeColor.Sprintf("%s[%d]", kind, v.Len()))
			if err := printNode(v, depth+1); err != nil {
				return err
			}
		case *zanj.Array:
			fmt.Printf("%s%s: %s\n", indent, keyColor.Sprint(label), typeColor.Sprint(v.String()))
		default:
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			fmt.Printf("%s%s: %s\n", indent, keyColor.Sprint(label), data)
		}
	}
	return nil
}

func cmdFlat(path string) error {
	z, err := open(path)
	if err != nil {
		return err
	}
	defer z.Close()

	tree, err := z.Materialize()
	if err != nil {
		return err
	}
	m, ok := tree.(map[string]any)
	if !ok {
		return fmt.Errorf("root is a sequence; flat output needs a mapping root")
	}

	flat := dotpath.Flatten(m)
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		data, err := json.Marshal(flat[k])
		if err != nil {
			return err
		}
		fmt.Printf("%s = %s\n", keyColor.Sprint(k), data)
	}
	return nil
}

func cmdCat(path, dotted string) error {
	z, err := open(path)
	if err != nil {
		return err
	}
	defer z.Close()

	root, err := z.Root()
	if err != nil {
		return err
	}

	var cur any = root
	for _, seg := range dotpath.Split(dotted) {
		node, ok := cur.(*zanj.Node)
		if !ok {
			return fmt.Errorf("path %q descends into a leaf value", dotted)
		}
		var key any = seg
		if !node.IsMapping() {
			idx, err := strconv.Atoi(seg)
			if err != nil {
				return fmt.Errorf("path %q: %q is not a sequence index", dotted, seg)
			}
			key = idx
		}
		if cur, err = node.Get(key); err != nil {
			return err
		}
	}

	if node, ok := cur.(*zanj.Node); ok {
		if cur, err = node.Materialize(); err != nil {
			return err
		}
	}

	out, err := json.MarshalIndent(cur, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
