package ast

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

// pythonAdapter maps the Python grammar onto the IR. Visibility follows
// naming conventions: dunder names are public, "__" prefixes private, "_"
// prefixes protected. Doc comments are docstrings, the first string
// expression of a body.
type pythonAdapter struct {
	grammar *tree_sitter.Language
}

func newPythonAdapter() *pythonAdapter {
	return &pythonAdapter{
		grammar: tree_sitter.NewLanguage(tree_sitter_python.Language()),
	}
}

func (a *pythonAdapter) Language() Language {
	return LangPython
}

func (a *pythonAdapter) Grammar() *tree_sitter.Language {
	return a.grammar
}

func (a *pythonAdapter) ExtractDeclarations(root *tree_sitter.Node, source []byte) []Declaration {
	var decls []Declaration

	for i := uint(0); i < root.ChildCount(); i++ {
		child := root.Child(i)
		if child == nil {
			continue
		}
		if decl := a.extractDeclaration(child, source); decl != nil {
			decls = append(decls, *decl)
		}
	}

	return decls
}

func (a *pythonAdapter) extractDeclaration(node *tree_sitter.Node, source []byte) *Declaration {
	switch node.Kind() {
	case "function_definition":
		return a.extractFunction(node, source, KindFunction)
	case "class_definition":
		return a.extractClass(node, source)
	case "decorated_definition":
		return a.extractDecorated(node, source)
	default:
		return nil
	}
}

// extractDecorated unwraps a decorated definition, widening the span to
// include the decorators and recording them in metadata.
func (a *pythonAdapter) extractDecorated(node *tree_sitter.Node, source []byte) *Declaration {
	var decorators []string
	var inner *Declaration

	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "decorator":
			decorators = append(decorators, nodeText(child, source))
		case "function_definition":
			inner = a.extractFunction(child, source, KindFunction)
		case "class_definition":
			inner = a.extractClass(child, source)
		}
	}

	if inner == nil {
		return nil
	}

	inner.Span = nodeSpan(node)
	if len(decorators) > 0 {
		inner.Metadata["decorators"] = strings.Join(decorators, ", ")
	}
	return inner
}

func (a *pythonAdapter) extractFunction(node *tree_sitter.Node, source []byte, kind DeclarationKind) *Declaration {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := nodeText(nameNode, source)

	decl := NewDeclaration(name, kind, nodeSpan(node))
	decl.Visibility = pyVisibility(name)
	decl.Parameters = a.extractParameters(node, source)

	if ret := node.ChildByFieldName("return_type"); ret != nil {
		decl.ReturnType = nodeText(ret, source)
	}

	if findChildByKind(node, "async") != nil {
		decl.Metadata["async"] = "true"
	}

	if body := node.ChildByFieldName("body"); body != nil {
		bodySpan := nodeSpan(body)
		decl.BodySpan = &bodySpan
		sigSpan := decl.Span
		sigSpan.End = bodySpan.Start
		sigSpan.EndLine = bodySpan.StartLine
		sigSpan.EndColumn = bodySpan.StartColumn
		decl.SignatureSpan = &sigSpan
		decl.DocComment = a.extractDocstring(body, source)
	}

	return &decl
}

func (a *pythonAdapter) extractClass(node *tree_sitter.Node, source []byte) *Declaration {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := nodeText(nameNode, source)

	decl := NewDeclaration(name, KindClass, nodeSpan(node))
	decl.Visibility = pyVisibility(name)

	if body := node.ChildByFieldName("body"); body != nil {
		bodySpan := nodeSpan(body)
		decl.BodySpan = &bodySpan
		sigSpan := decl.Span
		sigSpan.End = bodySpan.Start
		sigSpan.EndLine = bodySpan.StartLine
		sigSpan.EndColumn = bodySpan.StartColumn
		decl.SignatureSpan = &sigSpan
		decl.DocComment = a.extractDocstring(body, source)
		decl.Children = a.extractClassMembers(body, source)
	}

	return &decl
}

// extractClassMembers collects one level of methods and class variables.
func (a *pythonAdapter) extractClassMembers(body *tree_sitter.Node, source []byte) []Declaration {
	var members []Declaration

	for i := uint(0); i < body.ChildCount(); i++ {
		child := body.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "function_definition":
			if m := a.extractFunction(child, source, pyMethodKind(child, source)); m != nil {
				members = append(members, *m)
			}
		case "decorated_definition":
			if m := a.extractDecorated(child, source); m != nil {
				if m.Kind == KindFunction {
					m.Kind = KindMethod
				}
				members = append(members, *m)
			}
		case "expression_statement":
			if assign := findChildByKind(child, "assignment"); assign != nil {
				if m := a.extractClassVariable(assign, source); m != nil {
					members = append(members, *m)
				}
			}
		}
	}

	return members
}

// pyMethodKind distinguishes __init__ from ordinary methods.
func pyMethodKind(node *tree_sitter.Node, source []byte) DeclarationKind {
	if nameNode := node.ChildByFieldName("name"); nameNode != nil {
		if nodeText(nameNode, source) == "__init__" {
			return KindConstructor
		}
	}
	return KindMethod
}

func (a *pythonAdapter) extractClassVariable(assign *tree_sitter.Node, source []byte) *Declaration {
	left := assign.ChildByFieldName("left")
	if left == nil || left.Kind() != "identifier" {
		return nil
	}
	name := nodeText(left, source)

	decl := NewDeclaration(name, KindVariable, nodeSpan(assign))
	decl.Visibility = pyVisibility(name)
	if typ := assign.ChildByFieldName("type"); typ != nil {
		decl.ReturnType = nodeText(typ, source)
	}
	return &decl
}

// extractDocstring returns the docstring when the first statement of a body
// is a bare string expression.
func (a *pythonAdapter) extractDocstring(body *tree_sitter.Node, source []byte) *Comment {
	var first *tree_sitter.Node
	for i := uint(0); i < body.ChildCount(); i++ {
		child := body.Child(i)
		if child != nil && child.Kind() == "expression_statement" {
			first = child
			break
		}
		if child != nil && child.IsNamed() {
			return nil
		}
	}
	if first == nil {
		return nil
	}

	str := findChildByKind(first, "string")
	if str == nil {
		return nil
	}

	text := stripPyStringQuotes(nodeText(str, source))
	return &Comment{
		Text: cleanDocIndent(text),
		Kind: CommentDoc,
		Span: nodeSpan(str),
	}
}

// stripPyStringQuotes removes string prefixes and quote delimiters.
func stripPyStringQuotes(text string) string {
	text = strings.TrimLeft(text, "rRbBuUfF")
	for _, q := range []string{`"""`, "'''", `"`, "'"} {
		if strings.HasPrefix(text, q) && strings.HasSuffix(text, q) && len(text) >= 2*len(q) {
			return text[len(q) : len(text)-len(q)]
		}
	}
	return text
}

func (a *pythonAdapter) extractParameters(node *tree_sitter.Node, source []byte) []Parameter {
	paramsNode := node.ChildByFieldName("parameters")
	if paramsNode == nil {
		return nil
	}

	var params []Parameter
	for i := uint(0); i < paramsNode.ChildCount(); i++ {
		child := paramsNode.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "identifier":
			params = append(params, Parameter{
				Name: nodeText(child, source),
				Span: nodeSpan(child),
			})
		case "typed_parameter":
			p := Parameter{Span: nodeSpan(child)}
			if id := findChildByKind(child, "identifier"); id != nil {
				p.Name = nodeText(id, source)
			}
			if typ := child.ChildByFieldName("type"); typ != nil {
				p.TypeAnnotation = nodeText(typ, source)
			}
			if p.Name != "" {
				params = append(params, p)
			}
		case "default_parameter", "typed_default_parameter":
			p := Parameter{Span: nodeSpan(child)}
			if nameNode := child.ChildByFieldName("name"); nameNode != nil {
				p.Name = nodeText(nameNode, source)
			}
			if typ := child.ChildByFieldName("type"); typ != nil {
				p.TypeAnnotation = nodeText(typ, source)
			}
			if val := child.ChildByFieldName("value"); val != nil {
				p.DefaultValue = nodeText(val, source)
			}
			if p.Name != "" {
				params = append(params, p)
			}
		case "list_splat_pattern", "dictionary_splat_pattern":
			params = append(params, Parameter{
				Name: nodeText(child, source),
				Span: nodeSpan(child),
			})
		}
	}

	return params
}

func (a *pythonAdapter) ExtractImports(root *tree_sitter.Node, source []byte) []ImportLike {
	var imports []ImportLike

	for i := uint(0); i < root.ChildCount(); i++ {
		child := root.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "import_statement":
			imports = append(imports, a.extractImportStatement(child, source)...)
		case "import_from_statement":
			if imp := a.extractFromImport(child, source); imp != nil {
				imports = append(imports, *imp)
			}
		}
	}

	return imports
}

// extractImportStatement handles "import a, b as c": one ImportLike per
// imported module.
func (a *pythonAdapter) extractImportStatement(node *tree_sitter.Node, source []byte) []ImportLike {
	var imports []ImportLike

	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "dotted_name":
			imports = append(imports, ImportLike{
				Source: nodeText(child, source),
				Kind:   ImportModule,
				Span:   nodeSpan(node),
			})
		case "aliased_import":
			imp := ImportLike{Kind: ImportModule, Span: nodeSpan(node)}
			if nameNode := child.ChildByFieldName("name"); nameNode != nil {
				imp.Source = nodeText(nameNode, source)
			}
			if aliasNode := child.ChildByFieldName("alias"); aliasNode != nil {
				imp.Alias = nodeText(aliasNode, source)
			}
			if imp.Source != "" {
				imports = append(imports, imp)
			}
		}
	}

	return imports
}

// extractFromImport handles "from x import a, b" including relative imports
// and wildcards.
func (a *pythonAdapter) extractFromImport(node *tree_sitter.Node, source []byte) *ImportLike {
	imp := ImportLike{Kind: ImportNamed, Span: nodeSpan(node)}

	if moduleNode := node.ChildByFieldName("module_name"); moduleNode != nil {
		imp.Source = nodeText(moduleNode, source)
	}

	sawImport := false
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "import":
			sawImport = true
		case "wildcard_import":
			imp.Kind = ImportWildcard
			imp.Items = append(imp.Items, "*")
		case "dotted_name":
			if sawImport {
				imp.Items = append(imp.Items, nodeText(child, source))
			}
		case "aliased_import":
			if nameNode := child.ChildByFieldName("name"); nameNode != nil {
				item := nodeText(nameNode, source)
				if aliasNode := child.ChildByFieldName("alias"); aliasNode != nil {
					item += " as " + nodeText(aliasNode, source)
				}
				imp.Items = append(imp.Items, item)
			}
		}
	}

	if imp.Source == "" && len(imp.Items) == 0 {
		return nil
	}
	return &imp
}

func (a *pythonAdapter) ExtractComments(root *tree_sitter.Node, source []byte) []Comment {
	var comments []Comment
	a.visitComments(root, source, &comments)
	return comments
}

func (a *pythonAdapter) visitComments(node *tree_sitter.Node, source []byte, comments *[]Comment) {
	if node.Kind() == "comment" {
		text := strings.TrimSpace(strings.TrimPrefix(nodeText(node, source), "#"))
		*comments = append(*comments, Comment{
			Text: text,
			Kind: CommentLine,
			Span: nodeSpan(node),
		})
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		if child := node.Child(i); child != nil {
			a.visitComments(child, source, comments)
		}
	}
}

func (a *pythonAdapter) ExtractBody(root *tree_sitter.Node, source []byte, decl *Declaration) *Block {
	node := findMatchingDescendant(root, decl.Span.Start, decl.Span.End)
	if node == nil {
		return nil
	}

	body := findChildByKind(node, "block")
	if body == nil {
		// Decorated definitions keep the block one level down.
		for _, kind := range []string{"function_definition", "class_definition"} {
			if inner := findChildByKind(node, kind); inner != nil {
				body = inner.ChildByFieldName("body")
				break
			}
		}
	}
	if body == nil {
		return nil
	}

	return a.extractBlock(body, source)
}

func (a *pythonAdapter) extractBlock(node *tree_sitter.Node, source []byte) *Block {
	block := &Block{Span: nodeSpan(node)}
	for i := uint(0); i < node.ChildCount(); i++ {
		if child := node.Child(i); child != nil {
			a.extractBlockContents(child, source, block)
		}
	}
	return block
}

// pyControlFlowKinds maps Python statement node kinds to flow kinds.
var pyControlFlowKinds = map[string]ControlFlowKind{
	"if_statement":     FlowIf,
	"for_statement":    FlowFor,
	"while_statement":  FlowWhile,
	"try_statement":    FlowTry,
	"except_clause":    FlowCatch,
	"finally_clause":   FlowFinally,
	"with_statement":   FlowWith,
	"match_statement":  FlowMatch,
	"return_statement": FlowReturn,
}

func (a *pythonAdapter) extractBlockContents(node *tree_sitter.Node, source []byte, block *Block) {
	kind := node.Kind()

	if flow, ok := pyControlFlowKinds[kind]; ok {
		cf := ControlFlow{Kind: flow, Span: nodeSpan(node)}
		if flow == FlowIf || flow == FlowWhile {
			if cond := node.ChildByFieldName("condition"); cond != nil {
				span := nodeSpan(cond)
				cf.ConditionSpan = &span
			}
		}
		block.ControlFlow = append(block.ControlFlow, cf)
	}

	switch kind {
	case "call":
		if call := a.extractCall(node, source); call != nil {
			block.Calls = append(block.Calls, *call)
		}
	case "function_definition":
		if decl := a.extractFunction(node, source, KindFunction); decl != nil {
			block.NestedDeclarations = append(block.NestedDeclarations, *decl)
			return
		}
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		if child := node.Child(i); child != nil {
			a.extractBlockContents(child, source, block)
		}
	}
}

func (a *pythonAdapter) extractCall(node *tree_sitter.Node, source []byte) *Call {
	fn := node.ChildByFieldName("function")
	if fn == nil {
		return nil
	}

	count := 0
	if args := node.ChildByFieldName("arguments"); args != nil {
		for i := uint(0); i < args.ChildCount(); i++ {
			child := args.Child(i)
			if child != nil && child.IsNamed() {
				count++
			}
		}
	}

	return &Call{
		Callee:        nodeText(fn, source),
		Span:          nodeSpan(node),
		ArgumentCount: count,
		IsMethod:      fn.Kind() == "attribute",
	}
}

func (a *pythonAdapter) ExtractVisibility(node *tree_sitter.Node, source []byte) Visibility {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return VisibilityUnknown
	}
	return pyVisibility(nodeText(nameNode, source))
}

// pyVisibility applies Python naming conventions: dunder names are public,
// "__" prefixes private, "_" prefixes protected, everything else public.
func pyVisibility(name string) Visibility {
	switch {
	case strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__"):
		return VisibilityPublic
	case strings.HasPrefix(name, "__"):
		return VisibilityPrivate
	case strings.HasPrefix(name, "_"):
		return VisibilityProtected
	default:
		return VisibilityPublic
	}
}
