package docgen

import (
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path"
	"path/filepath"
	"strings"

	"gitlab.com/tozd/go/errors"
	"golang.org/x/mod/modfile"
)

// TypeDoc holds the doc comments of one declared type.
type TypeDoc struct {
	// Doc is the full doc comment of the type declaration.
	Doc string
	// Fields maps field names to their doc or line comment.
	Fields map[string]string
	// Methods maps method names to their doc comment.
	Methods map[string]string
}

// SourceDocs parses Go source files and indexes type doc comments by import
// path and type name.
type SourceDocs struct {
	byPath map[string]*TypeDoc // "import/path.Type"
	byPkg  map[string]*TypeDoc // "pkgname.Type", first declaration wins
}

// NewSourceDocs allocates a new index.
func NewSourceDocs() *SourceDocs {
	return &SourceDocs{byPath: map[string]*TypeDoc{}, byPkg: map[string]*TypeDoc{}}
}

// ParseDirectory walks dir recursively, skipping vendor and testdata
// directories, and indexes every Go file that parses. Import paths are
// derived from the go.mod found in dir, if any.
func (s *SourceDocs) ParseDirectory(dir string) error {
	modulePath, err := readModulePath(dir)
	if err != nil {
		return err
	}
	fset := token.NewFileSet()
	return filepath.WalkDir(dir, func(p string, de os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !de.IsDir() {
			return nil
		}
		if p != dir && (de.Name() == "vendor" || de.Name() == "testdata" || strings.HasPrefix(de.Name(), ".") || strings.HasPrefix(de.Name(), "_")) {
			return filepath.SkipDir
		}
		importPath := ""
		if modulePath != "" {
			rel, err := filepath.Rel(dir, p)
			if err != nil {
				return err
			}
			importPath = path.Join(modulePath, filepath.ToSlash(rel))
		}
		return s.parsePackageDir(fset, p, importPath)
	})
}

func readModulePath(dir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", errors.Errorf("reading go.mod: %w", err)
	}
	mp := modfile.ModulePath(data)
	if mp == "" {
		return "", errors.Errorf("go.mod in %s has no module directive", dir)
	}
	return mp, nil
}

func (s *SourceDocs) parsePackageDir(fset *token.FileSet, dir, importPath string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		file, err := parser.ParseFile(fset, filepath.Join(dir, name), nil, parser.ParseComments)
		if err != nil {
			// Skip files that fail to parse
			continue
		}
		s.indexFile(file, importPath)
	}
	return nil
}

func (s *SourceDocs) indexFile(file *ast.File, importPath string) {
	pkg := file.Name.Name
	for _, decl := range file.Decls {
		switch decl := decl.(type) {
		case *ast.GenDecl:
			if decl.Tok != token.TYPE {
				continue
			}
			for _, spec := range decl.Specs {
				ts, ok := spec.(*ast.TypeSpec)
				if !ok {
					continue
				}
				doc := s.entry(importPath, pkg, ts.Name.Name)
				comment := ts.Doc
				if comment == nil && len(decl.Specs) == 1 {
					comment = decl.Doc
				}
				if comment != nil {
					doc.Doc = strings.TrimSpace(comment.Text())
				}
				if st, ok := ts.Type.(*ast.StructType); ok {
					indexFields(st, doc)
				}
			}
		case *ast.FuncDecl:
			if decl.Recv == nil || len(decl.Recv.List) == 0 || decl.Doc == nil {
				continue
			}
			recv := receiverName(decl.Recv.List[0].Type)
			if recv == "" {
				continue
			}
			s.entry(importPath, pkg, recv).Methods[decl.Name.Name] = strings.TrimSpace(decl.Doc.Text())
		}
	}
}

func (s *SourceDocs) entry(importPath, pkg, name string) *TypeDoc {
	key := pkg + "." + name
	if importPath != "" {
		key = importPath + "." + name
	}
	doc, ok := s.byPath[key]
	if !ok {
		doc = &TypeDoc{Fields: map[string]string{}, Methods: map[string]string{}}
		s.byPath[key] = doc
	}
	if _, ok := s.byPkg[pkg+"."+name]; !ok {
		s.byPkg[pkg+"."+name] = doc
	}
	return doc
}

func indexFields(st *ast.StructType, doc *TypeDoc) {
	for _, fld := range st.Fields.List {
		desc := fieldDescription(fld)
		if desc == "" {
			continue
		}
		for _, ident := range fld.Names {
			doc.Fields[ident.Name] = desc
		}
	}
}

func fieldDescription(fld *ast.Field) string {
	if fld.Doc != nil {
		return extractDescription(fld.Doc.Text())
	}
	if fld.Comment != nil {
		return extractDescription(fld.Comment.Text())
	}
	return ""
}

func receiverName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.StarExpr:
		return receiverName(t.X)
	case *ast.Ident:
		return t.Name
	case *ast.IndexExpr:
		return receiverName(t.X)
	case *ast.IndexListExpr:
		return receiverName(t.X)
	}
	return ""
}

// Lookup returns the docs of the type name declared in the package with
// import path pkgPath. Without an exact match, for instance when the source
// tree had no go.mod, it falls back to the package name.
func (s *SourceDocs) Lookup(pkgPath, name string) (*TypeDoc, bool) {
	if s == nil {
		return nil, false
	}
	if doc, ok := s.byPath[pkgPath+"."+name]; ok {
		return doc, true
	}
	doc, ok := s.byPkg[path.Base(pkgPath)+"."+name]
	return doc, ok
}

// extractDescription returns the first paragraph, joined into one line.
func extractDescription(comment string) string {
	trimmed := strings.TrimSpace(comment)
	if trimmed == "" {
		return ""
	}
	paragraphs := strings.Split(trimmed, "\n\n")
	lines := strings.Split(paragraphs[0], "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	return strings.TrimSpace(strings.Join(lines, " "))
}
