package ast

import (
	"strings"
	"unicode"
	"unicode/utf8"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
)

// goAdapter maps the Go grammar onto the IR. Visibility follows the
// exported-identifier rule; doc comments are the contiguous // run
// immediately above a declaration.
type goAdapter struct {
	grammar *tree_sitter.Language
}

func newGoAdapter() *goAdapter {
	return &goAdapter{
		grammar: tree_sitter.NewLanguage(tree_sitter_go.Language()),
	}
}

func (a *goAdapter) Language() Language {
	return LangGo
}

func (a *goAdapter) Grammar() *tree_sitter.Language {
	return a.grammar
}

func (a *goAdapter) ExtractDeclarations(root *tree_sitter.Node, source []byte) []Declaration {
	var decls []Declaration

	for i := uint(0); i < root.ChildCount(); i++ {
		child := root.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "function_declaration":
			if d := a.extractFunction(child, source, KindFunction); d != nil {
				decls = append(decls, *d)
			}
		case "method_declaration":
			if d := a.extractFunction(child, source, KindMethod); d != nil {
				decls = append(decls, *d)
			}
		case "type_declaration":
			decls = append(decls, a.extractTypeDeclaration(child, source)...)
		case "const_declaration":
			decls = append(decls, a.extractValueDeclaration(child, source, "const_spec", KindConstant)...)
		case "var_declaration":
			decls = append(decls, a.extractValueDeclaration(child, source, "var_spec", KindVariable)...)
		}
	}

	return decls
}

func (a *goAdapter) extractFunction(node *tree_sitter.Node, source []byte, kind DeclarationKind) *Declaration {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := nodeText(nameNode, source)

	decl := NewDeclaration(name, kind, nodeSpan(node))
	decl.Visibility = goVisibility(name)
	decl.Parameters = a.extractParameters(node.ChildByFieldName("parameters"), source)
	decl.DocComment = a.extractDocComment(node, source)

	if kind == KindMethod {
		if recv := node.ChildByFieldName("receiver"); recv != nil {
			decl.Metadata["receiver"] = nodeText(recv, source)
		}
	}
	if result := node.ChildByFieldName("result"); result != nil {
		decl.ReturnType = nodeText(result, source)
	}
	if body := node.ChildByFieldName("body"); body != nil {
		bodySpan := nodeSpan(body)
		decl.BodySpan = &bodySpan
		sigSpan := decl.Span
		sigSpan.End = bodySpan.Start
		sigSpan.EndLine = bodySpan.StartLine
		sigSpan.EndColumn = bodySpan.StartColumn
		decl.SignatureSpan = &sigSpan
	}

	return &decl
}

// extractTypeDeclaration handles "type" declarations; a single statement can
// declare several specs.
func (a *goAdapter) extractTypeDeclaration(node *tree_sitter.Node, source []byte) []Declaration {
	var decls []Declaration

	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		if child.Kind() != "type_spec" && child.Kind() != "type_alias" {
			continue
		}

		nameNode := child.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		name := nodeText(nameNode, source)

		kind := KindType
		typeNode := child.ChildByFieldName("type")
		if typeNode != nil {
			switch typeNode.Kind() {
			case "struct_type":
				kind = KindStruct
			case "interface_type":
				kind = KindInterface
			}
		}

		// Single-spec declarations carry the doc comment and the type
		// keyword; use the whole statement span for them.
		span := nodeSpan(child)
		doc := a.extractDocComment(child, source)
		if node.NamedChildCount() == 1 {
			span = nodeSpan(node)
			doc = a.extractDocComment(node, source)
		}

		decl := NewDeclaration(name, kind, span)
		decl.Visibility = goVisibility(name)
		decl.DocComment = doc

		if typeNode != nil {
			switch typeNode.Kind() {
			case "struct_type":
				decl.Children = a.extractStructFields(typeNode, source)
			case "interface_type":
				decl.Children = a.extractInterfaceMethods(typeNode, source)
			}
			if body := a.typeBody(typeNode); body != nil {
				bodySpan := nodeSpan(body)
				decl.BodySpan = &bodySpan
				sigSpan := decl.Span
				sigSpan.End = bodySpan.Start
				sigSpan.EndLine = bodySpan.StartLine
				sigSpan.EndColumn = bodySpan.StartColumn
				decl.SignatureSpan = &sigSpan
			}
		}

		decls = append(decls, decl)
	}

	return decls
}

// typeBody returns the brace-delimited list node of a struct or interface.
func (a *goAdapter) typeBody(typeNode *tree_sitter.Node) *tree_sitter.Node {
	switch typeNode.Kind() {
	case "struct_type":
		return findChildByKind(typeNode, "field_declaration_list")
	case "interface_type":
		return typeNode
	}
	return nil
}

func (a *goAdapter) extractStructFields(structType *tree_sitter.Node, source []byte) []Declaration {
	list := findChildByKind(structType, "field_declaration_list")
	if list == nil {
		return nil
	}

	var fields []Declaration
	for _, fieldDecl := range findChildrenByKind(list, "field_declaration") {
		typ := ""
		if typeNode := fieldDecl.ChildByFieldName("type"); typeNode != nil {
			typ = nodeText(typeNode, source)
		}
		for _, id := range findChildrenByKind(fieldDecl, "field_identifier") {
			name := nodeText(id, source)
			f := NewDeclaration(name, KindField, nodeSpan(fieldDecl))
			f.Visibility = goVisibility(name)
			f.ReturnType = typ
			f.DocComment = a.extractDocComment(fieldDecl, source)
			fields = append(fields, f)
		}
	}
	return fields
}

func (a *goAdapter) extractInterfaceMethods(ifaceType *tree_sitter.Node, source []byte) []Declaration {
	var methods []Declaration

	for i := uint(0); i < ifaceType.ChildCount(); i++ {
		child := ifaceType.Child(i)
		if child == nil || child.Kind() != "method_elem" {
			continue
		}
		nameNode := child.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		name := nodeText(nameNode, source)

		m := NewDeclaration(name, KindMethod, nodeSpan(child))
		m.Visibility = goVisibility(name)
		m.Parameters = a.extractParameters(child.ChildByFieldName("parameters"), source)
		if result := child.ChildByFieldName("result"); result != nil {
			m.ReturnType = nodeText(result, source)
		}
		m.DocComment = a.extractDocComment(child, source)
		methods = append(methods, m)
	}

	return methods
}

// extractValueDeclaration handles const and var statements; each spec may
// name several identifiers.
func (a *goAdapter) extractValueDeclaration(node *tree_sitter.Node, source []byte, specKind string, kind DeclarationKind) []Declaration {
	var decls []Declaration

	var specs []*tree_sitter.Node
	specs = append(specs, findChildrenByKind(node, specKind)...)
	if list := findChildByKind(node, specKind+"_list"); list != nil {
		specs = append(specs, findChildrenByKind(list, specKind)...)
	}

	for _, spec := range specs {
		typ := ""
		if typeNode := spec.ChildByFieldName("type"); typeNode != nil {
			typ = nodeText(typeNode, source)
		}
		for _, id := range findChildrenByKind(spec, "identifier") {
			name := nodeText(id, source)
			d := NewDeclaration(name, kind, nodeSpan(spec))
			d.Visibility = goVisibility(name)
			d.ReturnType = typ
			d.DocComment = a.extractDocComment(spec, source)
			decls = append(decls, d)
		}
	}

	return decls
}

func (a *goAdapter) extractParameters(paramsNode *tree_sitter.Node, source []byte) []Parameter {
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
		case "parameter_declaration", "variadic_parameter_declaration":
			typ := ""
			if typeNode := child.ChildByFieldName("type"); typeNode != nil {
				typ = nodeText(typeNode, source)
				if child.Kind() == "variadic_parameter_declaration" {
					typ = "..." + typ
				}
			}
			ids := findChildrenByKind(child, "identifier")
			if len(ids) == 0 {
				// Unnamed parameter, type only.
				params = append(params, Parameter{
					TypeAnnotation: typ,
					Span:           nodeSpan(child),
				})
				continue
			}
			for _, id := range ids {
				params = append(params, Parameter{
					Name:           nodeText(id, source),
					TypeAnnotation: typ,
					Span:           nodeSpan(child),
				})
			}
		}
	}

	return params
}

// extractDocComment accumulates the contiguous run of // comments directly
// above the declaration.
func (a *goAdapter) extractDocComment(node *tree_sitter.Node, source []byte) *Comment {
	var lines []string
	var first, last Span

	expectedLine := int(node.StartPosition().Row)
	prev := node.PrevSibling()
	for prev != nil && prev.Kind() == "comment" {
		// A blank line between comment and declaration detaches the doc.
		if int(prev.EndPosition().Row) < expectedLine-1 {
			break
		}
		text := nodeText(prev, source)
		if !strings.HasPrefix(text, "//") {
			break
		}
		lines = append([]string{strings.TrimSpace(strings.TrimPrefix(text, "//"))}, lines...)
		first = nodeSpan(prev)
		if last.End == 0 {
			last = nodeSpan(prev)
		}
		expectedLine = int(prev.StartPosition().Row)
		prev = prev.PrevSibling()
	}

	if len(lines) == 0 {
		return nil
	}

	span := first
	span.End = last.End
	span.EndLine = last.EndLine
	span.EndColumn = last.EndColumn

	return &Comment{
		Text: cleanDocIndent(strings.Join(lines, "\n")),
		Kind: CommentDoc,
		Span: span,
	}
}

func (a *goAdapter) ExtractImports(root *tree_sitter.Node, source []byte) []ImportLike {
	var imports []ImportLike
	a.visitImports(root, source, &imports)
	return imports
}

func (a *goAdapter) visitImports(node *tree_sitter.Node, source []byte, imports *[]ImportLike) {
	if node.Kind() == "import_spec" {
		if imp := a.extractImportSpec(node, source); imp != nil {
			*imports = append(*imports, *imp)
		}
		return
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		if child.Kind() == "import_declaration" || child.Kind() == "import_spec_list" || child.Kind() == "import_spec" {
			a.visitImports(child, source, imports)
		}
	}
}

func (a *goAdapter) extractImportSpec(node *tree_sitter.Node, source []byte) *ImportLike {
	pathNode := node.ChildByFieldName("path")
	if pathNode == nil {
		return nil
	}
	path := strings.Trim(nodeText(pathNode, source), "\"`")
	if path == "" {
		return nil
	}

	imp := ImportLike{
		Source: path,
		Kind:   ImportModule,
		Span:   nodeSpan(node),
	}

	if nameNode := node.ChildByFieldName("name"); nameNode != nil {
		switch nameNode.Kind() {
		case "dot":
			imp.Kind = ImportWildcard
			imp.Items = []string{"*"}
		case "blank_identifier":
			imp.Kind = ImportSideEffect
		default:
			imp.Alias = nodeText(nameNode, source)
		}
	}

	return &imp
}

func (a *goAdapter) ExtractComments(root *tree_sitter.Node, source []byte) []Comment {
	var comments []Comment
	a.visitComments(root, source, &comments)
	return comments
}

func (a *goAdapter) visitComments(node *tree_sitter.Node, source []byte, comments *[]Comment) {
	if node.Kind() == "comment" {
		text := nodeText(node, source)
		c := Comment{Span: nodeSpan(node)}
		if strings.HasPrefix(text, "/*") {
			c.Kind = CommentBlock
			c.Text = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(text, "/*"), "*/"))
		} else {
			c.Kind = CommentLine
			c.Text = strings.TrimSpace(strings.TrimPrefix(text, "//"))
		}
		*comments = append(*comments, c)
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		if child := node.Child(i); child != nil {
			a.visitComments(child, source, comments)
		}
	}
}

func (a *goAdapter) ExtractBody(root *tree_sitter.Node, source []byte, decl *Declaration) *Block {
	node := findMatchingDescendant(root, decl.Span.Start, decl.Span.End)
	if node == nil {
		return nil
	}

	body := node.ChildByFieldName("body")
	if body == nil {
		body = findChildByKind(node, "block")
	}
	if body == nil {
		return nil
	}

	return a.extractBlock(body, source)
}

func (a *goAdapter) extractBlock(node *tree_sitter.Node, source []byte) *Block {
	block := &Block{Span: nodeSpan(node)}
	for i := uint(0); i < node.ChildCount(); i++ {
		if child := node.Child(i); child != nil {
			a.extractBlockContents(child, source, block)
		}
	}
	return block
}

// goControlFlowKinds maps Go statement node kinds to flow kinds.
var goControlFlowKinds = map[string]ControlFlowKind{
	"if_statement":                FlowIf,
	"for_statement":               FlowFor,
	"expression_switch_statement": FlowSwitch,
	"type_switch_statement":       FlowSwitch,
	"select_statement":            FlowSwitch,
	"return_statement":            FlowReturn,
}

func (a *goAdapter) extractBlockContents(node *tree_sitter.Node, source []byte, block *Block) {
	kind := node.Kind()

	if flow, ok := goControlFlowKinds[kind]; ok {
		cf := ControlFlow{Kind: flow, Span: nodeSpan(node)}
		if flow == FlowIf {
			if cond := node.ChildByFieldName("condition"); cond != nil {
				span := nodeSpan(cond)
				cf.ConditionSpan = &span
			}
		}
		block.ControlFlow = append(block.ControlFlow, cf)
	}

	if kind == "call_expression" {
		if call := a.extractCall(node, source); call != nil {
			block.Calls = append(block.Calls, *call)
		}
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		if child := node.Child(i); child != nil {
			a.extractBlockContents(child, source, block)
		}
	}
}

func (a *goAdapter) extractCall(node *tree_sitter.Node, source []byte) *Call {
	fn := node.ChildByFieldName("function")
	if fn == nil {
		return nil
	}
	if fn.Kind() != "identifier" && fn.Kind() != "selector_expression" {
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
		IsMethod:      fn.Kind() == "selector_expression",
	}
}

func (a *goAdapter) ExtractVisibility(node *tree_sitter.Node, source []byte) Visibility {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return VisibilityUnknown
	}
	return goVisibility(nodeText(nameNode, source))
}

// goVisibility applies the exported-identifier rule.
func goVisibility(name string) Visibility {
	r, _ := utf8.DecodeRuneInString(name)
	if unicode.IsUpper(r) {
		return VisibilityPublic
	}
	return VisibilityPrivate
}
