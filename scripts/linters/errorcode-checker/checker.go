package main

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const codesImportPath = "github.com/gear6io/quackview/pkg/errors"

var codeFormat = regexp.MustCompile(`^[a-z][a-z0-9_]*\.[a-z][a-z0-9_]*$`)

// CodeInfo is one errors.MustNewCode declaration
type CodeInfo struct {
	Name   string
	Value  string
	Dir    string // slash-separated, relative to the scanned root
	Pos    token.Position
	UsedIn []token.Position
}

// Finding is a single rule violation
type Finding struct {
	Pos  token.Position
	Rule string
	Msg  string
}

func (f Finding) String() string {
	return fmt.Sprintf("%s:%d: [%s] %s", f.Pos.Filename, f.Pos.Line, f.Rule, f.Msg)
}

// Checker walks a source tree and collects code declarations, code usages
// and forbidden error constructors
type Checker struct {
	cfg       *Config
	fset      *token.FileSet
	forbidden map[string]bool
	codes     map[string]*CodeInfo // keyed by dir + "." + name
	findings  []Finding
	files     int
}

// NewChecker creates a checker for cfg
func NewChecker(cfg *Config) *Checker {
	forbidden := make(map[string]bool, len(cfg.ForbiddenCalls))
	for _, call := range cfg.ForbiddenCalls {
		forbidden[call] = true
	}
	return &Checker{
		cfg:       cfg,
		fset:      token.NewFileSet(),
		forbidden: forbidden,
		codes:     make(map[string]*CodeInfo),
	}
}

func (c *Checker) debug(format string, args ...interface{}) {
	if c.cfg.Verbose {
		fmt.Printf(format+"\n", args...)
	}
}

func (c *Checker) excluded(path string) bool {
	slashed := filepath.ToSlash(path)
	for _, ex := range c.cfg.ExcludePaths {
		if strings.Contains(slashed, ex) {
			return true
		}
	}
	return false
}

// CheckDirectory scans every Go file under dir. Declarations are collected
// in a first pass so usages in files that sort earlier still count.
func (c *Checker) CheckDirectory(dir string) error {
	var parsed []*ast.File
	var paths []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if path != dir && c.excluded(path+string(filepath.Separator)) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() || !strings.HasSuffix(path, ".go") {
			return nil
		}
		if c.cfg.SkipTests && strings.HasSuffix(path, "_test.go") {
			return nil
		}

		file, err := parser.ParseFile(c.fset, path, nil, 0)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
		parsed = append(parsed, file)
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return err
	}

	dirs := make([]string, len(paths))
	for i, path := range paths {
		rel, err := filepath.Rel(dir, filepath.Dir(path))
		if err != nil {
			return err
		}
		dirs[i] = filepath.ToSlash(rel)
	}

	for i, file := range parsed {
		c.collectCodes(file, dirs[i])
	}
	for i, file := range parsed {
		c.checkFile(file, dirs[i])
	}
	c.files += len(parsed)
	return nil
}

// importsOf maps each file-local package name to its import path
func importsOf(file *ast.File) map[string]string {
	imports := make(map[string]string, len(file.Imports))
	for _, imp := range file.Imports {
		path, _ := strconv.Unquote(imp.Path.Value)
		name := path[strings.LastIndex(path, "/")+1:]
		if imp.Name != nil {
			name = imp.Name.Name
		}
		imports[name] = path
	}
	return imports
}

// resolveCall returns "importpath.Func" for a pkg.Func call, or ""
func resolveCall(call *ast.CallExpr, imports map[string]string) string {
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok {
		return ""
	}
	ident, ok := sel.X.(*ast.Ident)
	if !ok || ident.Obj != nil {
		return ""
	}
	path, ok := imports[ident.Name]
	if !ok {
		return ""
	}
	return path + "." + sel.Sel.Name
}

func (c *Checker) collectCodes(file *ast.File, dir string) {
	imports := importsOf(file)

	for _, decl := range file.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.VAR {
			continue
		}
		for _, spec := range gen.Specs {
			vs := spec.(*ast.ValueSpec)
			for i, name := range vs.Names {
				if i >= len(vs.Values) {
					continue
				}
				call, ok := vs.Values[i].(*ast.CallExpr)
				if !ok || resolveCall(call, imports) != codesImportPath+".MustNewCode" || len(call.Args) != 1 {
					continue
				}

				info := &CodeInfo{Name: name.Name, Dir: dir, Pos: c.fset.Position(name.Pos())}
				if lit, ok := call.Args[0].(*ast.BasicLit); ok && lit.Kind == token.STRING {
					info.Value, _ = strconv.Unquote(lit.Value)
				}
				c.codes[dir+"."+name.Name] = info
				c.debug("code %s = %q in %s", name.Name, info.Value, dir)
			}
		}
	}
}

func (c *Checker) checkFile(file *ast.File, dir string) {
	imports := importsOf(file)

	ast.Inspect(file, func(n ast.Node) bool {
		switch x := n.(type) {
		case *ast.CallExpr:
			if target := resolveCall(x, imports); c.forbidden[target] {
				c.findings = append(c.findings, Finding{
					Pos:  c.fset.Position(x.Pos()),
					Rule: "forbidden",
					Msg:  target + " creates an uncoded error; use pkg/errors with a Code",
				})
			}
		case *ast.Ident:
			// same-package reference
			if info, ok := c.codes[dir+"."+x.Name]; ok && c.fset.Position(x.Pos()) != info.Pos {
				info.UsedIn = append(info.UsedIn, c.fset.Position(x.Pos()))
			}
		case *ast.SelectorExpr:
			// pkg.ErrX from another package in the tree
			ident, ok := x.X.(*ast.Ident)
			if !ok {
				return true
			}
			path, ok := imports[ident.Name]
			if !ok {
				return true
			}
			for _, info := range c.codes {
				if info.Name == x.Sel.Name && strings.HasSuffix(path, "/"+info.Dir) {
					info.UsedIn = append(info.UsedIn, c.fset.Position(x.Pos()))
				}
			}
		}
		return true
	})
}

// ValidateCodes reports malformed code strings and values declared twice
func (c *Checker) ValidateCodes() []Finding {
	var findings []Finding
	seen := make(map[string]*CodeInfo)

	for _, info := range c.sortedCodes() {
		switch {
		case info.Value == "":
			findings = append(findings, Finding{Pos: info.Pos, Rule: "code", Msg: info.Name + " is not declared with a string literal"})
			continue
		case !codeFormat.MatchString(info.Value):
			findings = append(findings, Finding{Pos: info.Pos, Rule: "code", Msg: fmt.Sprintf("%q is not in package.name form", info.Value)})
		case strings.Contains(info.Value, "err"):
			findings = append(findings, Finding{Pos: info.Pos, Rule: "code", Msg: fmt.Sprintf("%q must not contain 'err'", info.Value)})
		}

		if prev, ok := seen[info.Value]; ok {
			findings = append(findings, Finding{
				Pos:  info.Pos,
				Rule: "duplicate",
				Msg:  fmt.Sprintf("%q is also declared at %s:%d", info.Value, prev.Pos.Filename, prev.Pos.Line),
			})
			continue
		}
		seen[info.Value] = info
	}
	return findings
}

// Unused returns the codes nothing references
func (c *Checker) Unused() []*CodeInfo {
	var unused []*CodeInfo
	for _, info := range c.sortedCodes() {
		if len(info.UsedIn) == 0 {
			unused = append(unused, info)
		}
	}
	return unused
}

// Findings returns the forbidden-call findings in file order
func (c *Checker) Findings() []Finding {
	sort.Slice(c.findings, func(i, j int) bool {
		a, b := c.findings[i].Pos, c.findings[j].Pos
		if a.Filename != b.Filename {
			return a.Filename < b.Filename
		}
		return a.Line < b.Line
	})
	return c.findings
}

func (c *Checker) sortedCodes() []*CodeInfo {
	out := make([]*CodeInfo, 0, len(c.codes))
	for _, info := range c.codes {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Pos.Filename != out[j].Pos.Filename {
			return out[i].Pos.Filename < out[j].Pos.Filename
		}
		return out[i].Pos.Line < out[j].Pos.Line
	})
	return out
}
