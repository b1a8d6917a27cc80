package ast

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// typescriptAdapter maps the TypeScript grammar onto the IR. One instance
// serves the typescript grammar, another the tsx variant. Visibility comes
// from accessibility modifiers and the enclosing export context.
type typescriptAdapter struct {
	grammar *tree_sitter.Language
	lang    Language
}

func newTypeScriptAdapter() *typescriptAdapter {
	return &typescriptAdapter{
		grammar: tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript()),
		lang:    LangTypeScript,
	}
}

func newTsxAdapter() *typescriptAdapter {
	return &typescriptAdapter{
		grammar: tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTSX()),
		lang:    LangTsx,
	}
}

func (a *typescriptAdapter) Language() Language {
	return a.lang
}

func (a *typescriptAdapter) Grammar() *tree_sitter.Language {
	return a.grammar
}

func (a *typescriptAdapter) ExtractDeclarations(root *tree_sitter.Node, source []byte) []Declaration {
	var decls []Declaration

	for i := uint(0); i < root.ChildCount(); i++ {
		child := root.Child(i)
		if child == nil {
			continue
		}
		decls = append(decls, a.extractDeclaration(child, source)...)
	}

	return decls
}

// extractDeclaration may return several declarations: export statements wrap
// their inner declaration, and a single let/const can declare several names.
func (a *typescriptAdapter) extractDeclaration(node *tree_sitter.Node, source []byte) []Declaration {
	switch node.Kind() {
	case "function_declaration":
		if d := a.extractFunction(node, source); d != nil {
			return []Declaration{*d}
		}
	case "class_declaration":
		if d := a.extractClass(node, source); d != nil {
			return []Declaration{*d}
		}
	case "interface_declaration":
		if d := a.extractInterface(node, source); d != nil {
			return []Declaration{*d}
		}
	case "type_alias_declaration":
		if d := a.extractNamed(node, source, KindType); d != nil {
			return []Declaration{*d}
		}
	case "enum_declaration":
		if d := a.extractEnum(node, source); d != nil {
			return []Declaration{*d}
		}
	case "lexical_declaration", "variable_declaration":
		return a.extractVariables(node, source)
	case "export_statement":
		var out []Declaration
		for i := uint(0); i < node.ChildCount(); i++ {
			child := node.Child(i)
			if child == nil {
				continue
			}
			for _, d := range a.extractDeclaration(child, source) {
				// The export context overrides an absent modifier.
				d.Visibility = VisibilityPublic
				out = append(out, d)
			}
		}
		return out
	}
	return nil
}

func (a *typescriptAdapter) extractFunction(node *tree_sitter.Node, source []byte) *Declaration {
	nameNode := findChildByKind(node, "identifier")
	if nameNode == nil {
		return nil
	}

	decl := NewDeclaration(nodeText(nameNode, source), KindFunction, nodeSpan(node))
	decl.Visibility = a.ExtractVisibility(node, source)
	decl.Parameters = a.extractParameters(node, source)
	decl.ReturnType = a.extractReturnType(node, source)
	decl.DocComment = a.extractJSDoc(node, source)

	if findChildByKind(node, "async") != nil {
		decl.Metadata["async"] = "true"
	}

	if body := findChildByKind(node, "statement_block"); body != nil {
		a.setBodySpans(&decl, body)
	}

	return &decl
}

func (a *typescriptAdapter) extractClass(node *tree_sitter.Node, source []byte) *Declaration {
	nameNode := findChildByKind(node, "type_identifier")
	if nameNode == nil {
		nameNode = findChildByKind(node, "identifier")
	}
	if nameNode == nil {
		return nil
	}

	decl := NewDeclaration(nodeText(nameNode, source), KindClass, nodeSpan(node))
	decl.Visibility = a.ExtractVisibility(node, source)
	decl.DocComment = a.extractJSDoc(node, source)

	if body := findChildByKind(node, "class_body"); body != nil {
		a.setBodySpans(&decl, body)
		decl.Children = a.extractClassMembers(body, source)
	}

	return &decl
}

func (a *typescriptAdapter) extractInterface(node *tree_sitter.Node, source []byte) *Declaration {
	nameNode := findChildByKind(node, "type_identifier")
	if nameNode == nil {
		nameNode = findChildByKind(node, "identifier")
	}
	if nameNode == nil {
		return nil
	}

	decl := NewDeclaration(nodeText(nameNode, source), KindInterface, nodeSpan(node))
	decl.Visibility = a.ExtractVisibility(node, source)
	decl.DocComment = a.extractJSDoc(node, source)

	body := findChildByKind(node, "interface_body")
	if body == nil {
		body = findChildByKind(node, "object_type")
	}
	if body != nil {
		a.setBodySpans(&decl, body)
		decl.Children = a.extractInterfaceMembers(body, source)
	}

	return &decl
}

func (a *typescriptAdapter) extractNamed(node *tree_sitter.Node, source []byte, kind DeclarationKind) *Declaration {
	nameNode := findChildByKind(node, "type_identifier")
	if nameNode == nil {
		nameNode = findChildByKind(node, "identifier")
	}
	if nameNode == nil {
		return nil
	}

	decl := NewDeclaration(nodeText(nameNode, source), kind, nodeSpan(node))
	decl.Visibility = a.ExtractVisibility(node, source)
	decl.DocComment = a.extractJSDoc(node, source)
	return &decl
}

func (a *typescriptAdapter) extractEnum(node *tree_sitter.Node, source []byte) *Declaration {
	nameNode := findChildByKind(node, "identifier")
	if nameNode == nil {
		return nil
	}

	decl := NewDeclaration(nodeText(nameNode, source), KindEnum, nodeSpan(node))
	decl.Visibility = a.ExtractVisibility(node, source)
	decl.DocComment = a.extractJSDoc(node, source)

	if body := findChildByKind(node, "enum_body"); body != nil {
		a.setBodySpans(&decl, body)
	}

	return &decl
}

// extractVariables handles let/const/var statements, promoting arrow
// functions and function expressions to function declarations.
func (a *typescriptAdapter) extractVariables(node *tree_sitter.Node, source []byte) []Declaration {
	var decls []Declaration

	for _, declarator := range findChildrenByKind(node, "variable_declarator") {
		nameNode := findChildByKind(declarator, "identifier")
		if nameNode == nil {
			continue
		}

		kind := KindVariable
		fn := findChildByKind(declarator, "arrow_function")
		if fn == nil {
			fn = findChildByKind(declarator, "function_expression")
		}
		if fn != nil {
			kind = KindFunction
		}

		decl := NewDeclaration(nodeText(nameNode, source), kind, nodeSpan(node))
		decl.Visibility = a.ExtractVisibility(node, source)
		decl.DocComment = a.extractJSDoc(node, source)

		if fn != nil {
			decl.Parameters = a.extractParameters(fn, source)
			decl.ReturnType = a.extractReturnType(fn, source)
			if findChildByKind(fn, "async") != nil {
				decl.Metadata["async"] = "true"
			}
		}

		decls = append(decls, decl)
	}

	return decls
}

func (a *typescriptAdapter) extractClassMembers(body *tree_sitter.Node, source []byte) []Declaration {
	var members []Declaration

	for i := uint(0); i < body.ChildCount(); i++ {
		child := body.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "method_definition":
			if m := a.extractMethod(child, source); m != nil {
				members = append(members, *m)
			}
		case "public_field_definition", "field_definition":
			if m := a.extractField(child, source); m != nil {
				members = append(members, *m)
			}
		}
	}

	return members
}

func (a *typescriptAdapter) extractMethod(node *tree_sitter.Node, source []byte) *Declaration {
	nameNode := findChildByKind(node, "property_identifier")
	if nameNode == nil {
		nameNode = findChildByKind(node, "identifier")
	}
	if nameNode == nil {
		return nil
	}
	name := nodeText(nameNode, source)

	kind := KindMethod
	if name == "constructor" {
		kind = KindConstructor
	}

	decl := NewDeclaration(name, kind, nodeSpan(node))
	decl.Visibility = a.ExtractVisibility(node, source)
	decl.Parameters = a.extractParameters(node, source)
	decl.ReturnType = a.extractReturnType(node, source)
	decl.DocComment = a.extractJSDoc(node, source)

	if findChildByKind(node, "async") != nil {
		decl.Metadata["async"] = "true"
	}
	if findChildByKind(node, "static") != nil {
		decl.Metadata["static"] = "true"
	}
	if body := findChildByKind(node, "statement_block"); body != nil {
		a.setBodySpans(&decl, body)
	}

	return &decl
}

func (a *typescriptAdapter) extractField(node *tree_sitter.Node, source []byte) *Declaration {
	nameNode := findChildByKind(node, "property_identifier")
	if nameNode == nil {
		nameNode = findChildByKind(node, "identifier")
	}
	if nameNode == nil {
		return nil
	}

	decl := NewDeclaration(nodeText(nameNode, source), KindField, nodeSpan(node))
	decl.Visibility = a.ExtractVisibility(node, source)
	if typ := findChildByKind(node, "type_annotation"); typ != nil {
		decl.ReturnType = strings.TrimSpace(strings.TrimPrefix(nodeText(typ, source), ":"))
	}
	return &decl
}

func (a *typescriptAdapter) extractInterfaceMembers(body *tree_sitter.Node, source []byte) []Declaration {
	var members []Declaration

	for i := uint(0); i < body.ChildCount(); i++ {
		child := body.Child(i)
		if child == nil {
			continue
		}
		nameNode := findChildByKind(child, "property_identifier")
		if nameNode == nil {
			continue
		}

		switch child.Kind() {
		case "method_signature":
			m := NewDeclaration(nodeText(nameNode, source), KindMethod, nodeSpan(child))
			m.Visibility = VisibilityPublic
			m.Parameters = a.extractParameters(child, source)
			m.ReturnType = a.extractReturnType(child, source)
			members = append(members, m)
		case "property_signature":
			m := NewDeclaration(nodeText(nameNode, source), KindField, nodeSpan(child))
			m.Visibility = VisibilityPublic
			if typ := findChildByKind(child, "type_annotation"); typ != nil {
				m.ReturnType = strings.TrimSpace(strings.TrimPrefix(nodeText(typ, source), ":"))
			}
			members = append(members, m)
		}
	}

	return members
}

func (a *typescriptAdapter) setBodySpans(decl *Declaration, body *tree_sitter.Node) {
	bodySpan := nodeSpan(body)
	decl.BodySpan = &bodySpan
	sigSpan := decl.Span
	sigSpan.End = bodySpan.Start
	sigSpan.EndLine = bodySpan.StartLine
	sigSpan.EndColumn = bodySpan.StartColumn
	decl.SignatureSpan = &sigSpan
}

func (a *typescriptAdapter) extractParameters(node *tree_sitter.Node, source []byte) []Parameter {
	paramsNode := findChildByKind(node, "formal_parameters")
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
		case "required_parameter", "optional_parameter":
			if p := a.extractParameter(child, source); p != nil {
				params = append(params, *p)
			}
		case "identifier", "rest_pattern":
			params = append(params, Parameter{
				Name: nodeText(child, source),
				Span: nodeSpan(child),
			})
		}
	}

	return params
}

func (a *typescriptAdapter) extractParameter(node *tree_sitter.Node, source []byte) *Parameter {
	nameNode := findChildByKind(node, "identifier")
	if nameNode == nil {
		nameNode = findChildByKind(node, "rest_pattern")
	}
	if nameNode == nil {
		return nil
	}

	p := Parameter{
		Name: nodeText(nameNode, source),
		Span: nodeSpan(node),
	}
	if typ := findChildByKind(node, "type_annotation"); typ != nil {
		p.TypeAnnotation = strings.TrimSpace(strings.TrimPrefix(nodeText(typ, source), ":"))
	}
	if val := node.ChildByFieldName("value"); val != nil {
		p.DefaultValue = nodeText(val, source)
	}
	return &p
}

func (a *typescriptAdapter) extractReturnType(node *tree_sitter.Node, source []byte) string {
	if typ := node.ChildByFieldName("return_type"); typ != nil {
		return strings.TrimSpace(strings.TrimPrefix(nodeText(typ, source), ":"))
	}
	if typ := findChildByKind(node, "type_annotation"); typ != nil {
		return strings.TrimSpace(strings.TrimPrefix(nodeText(typ, source), ":"))
	}
	return ""
}

// extractJSDoc attaches the immediately preceding /** comment.
func (a *typescriptAdapter) extractJSDoc(node *tree_sitter.Node, source []byte) *Comment {
	prev := node.PrevSibling()
	if prev == nil || prev.Kind() != "comment" {
		return nil
	}
	text := nodeText(prev, source)
	if !strings.HasPrefix(text, "/**") {
		return nil
	}
	return &Comment{
		Text: cleanBlockCommentText(text),
		Kind: CommentDoc,
		Span: nodeSpan(prev),
	}
}

func (a *typescriptAdapter) ExtractImports(root *tree_sitter.Node, source []byte) []ImportLike {
	var imports []ImportLike

	for i := uint(0); i < root.ChildCount(); i++ {
		child := root.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "import_statement":
			if imp := a.extractImport(child, source); imp != nil {
				imports = append(imports, *imp)
			}
		case "export_statement":
			// Re-exports: export ... from "module".
			if src := findChildByKind(child, "string"); src != nil {
				imp := ImportLike{
					Source: trimStringQuotes(nodeText(src, source)),
					Kind:   ImportReExport,
					Span:   nodeSpan(child),
				}
				if clause := findChildByKind(child, "export_clause"); clause != nil {
					for _, spec := range findChildrenByKind(clause, "export_specifier") {
						imp.Items = append(imp.Items, nodeText(spec, source))
					}
				}
				if findChildByKind(child, "namespace_export") != nil {
					imp.Items = append(imp.Items, "*")
				}
				imports = append(imports, imp)
			}
		}
	}

	return imports
}

func (a *typescriptAdapter) extractImport(node *tree_sitter.Node, source []byte) *ImportLike {
	src := findChildByKind(node, "string")
	if src == nil {
		return nil
	}

	imp := ImportLike{
		Source: trimStringQuotes(nodeText(src, source)),
		Kind:   ImportSideEffect,
		Span:   nodeSpan(node),
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "import_clause":
			a.extractImportClause(child, source, &imp)
		case "type":
			imp.TypeOnly = true
		}
	}

	return &imp
}

func (a *typescriptAdapter) extractImportClause(node *tree_sitter.Node, source []byte, imp *ImportLike) {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "identifier":
			// Default import.
			imp.Items = append(imp.Items, nodeText(child, source))
			if imp.Kind == ImportSideEffect {
				imp.Kind = ImportModule
			}
		case "named_imports":
			imp.Kind = ImportNamed
			for _, spec := range findChildrenByKind(child, "import_specifier") {
				if nameNode := findChildByKind(spec, "identifier"); nameNode != nil {
					imp.Items = append(imp.Items, nodeText(nameNode, source))
				}
			}
		case "namespace_import":
			// import * as name
			imp.Kind = ImportWildcard
			imp.Items = append(imp.Items, "*")
			if nameNode := findChildByKind(child, "identifier"); nameNode != nil {
				imp.Alias = nodeText(nameNode, source)
			}
		}
	}
}

func (a *typescriptAdapter) ExtractComments(root *tree_sitter.Node, source []byte) []Comment {
	var comments []Comment
	a.visitComments(root, source, &comments)
	return comments
}

func (a *typescriptAdapter) visitComments(node *tree_sitter.Node, source []byte, comments *[]Comment) {
	if node.Kind() == "comment" {
		text := nodeText(node, source)
		c := Comment{Span: nodeSpan(node)}
		switch {
		case strings.HasPrefix(text, "/**"):
			c.Kind = CommentDoc
			c.Text = cleanBlockCommentText(text)
		case strings.HasPrefix(text, "/*"):
			c.Kind = CommentBlock
			c.Text = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(text, "/*"), "*/"))
		default:
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

func (a *typescriptAdapter) ExtractBody(root *tree_sitter.Node, source []byte, decl *Declaration) *Block {
	node := findMatchingDescendant(root, decl.Span.Start, decl.Span.End)
	if node == nil {
		return nil
	}

	body := findChildByKind(node, "statement_block")
	if body == nil {
		body = findChildByKind(node, "class_body")
	}
	if body == nil {
		// Arrow functions hold the block inside a declarator.
		if declarator := findChildByKind(node, "variable_declarator"); declarator != nil {
			if fn := findChildByKind(declarator, "arrow_function"); fn != nil {
				body = findChildByKind(fn, "statement_block")
			}
		}
	}
	if body == nil {
		return nil
	}

	return a.extractBlock(body, source)
}

func (a *typescriptAdapter) extractBlock(node *tree_sitter.Node, source []byte) *Block {
	block := &Block{Span: nodeSpan(node)}
	for i := uint(0); i < node.ChildCount(); i++ {
		if child := node.Child(i); child != nil {
			a.extractBlockContents(child, source, block)
		}
	}
	return block
}

// tsControlFlowKinds maps TypeScript statement node kinds to flow kinds.
var tsControlFlowKinds = map[string]ControlFlowKind{
	"if_statement":     FlowIf,
	"for_statement":    FlowFor,
	"for_in_statement": FlowFor,
	"while_statement":  FlowWhile,
	"do_statement":     FlowWhile,
	"switch_statement": FlowSwitch,
	"try_statement":    FlowTry,
	"catch_clause":     FlowCatch,
	"finally_clause":   FlowFinally,
	"return_statement": FlowReturn,
}

func (a *typescriptAdapter) extractBlockContents(node *tree_sitter.Node, source []byte, block *Block) {
	kind := node.Kind()

	if flow, ok := tsControlFlowKinds[kind]; ok {
		cf := ControlFlow{Kind: flow, Span: nodeSpan(node)}
		if flow == FlowIf || flow == FlowWhile {
			if cond := findChildByKind(node, "parenthesized_expression"); cond != nil {
				span := nodeSpan(cond)
				cf.ConditionSpan = &span
			}
		}
		block.ControlFlow = append(block.ControlFlow, cf)
	}

	switch kind {
	case "call_expression":
		if call := a.extractCall(node, source); call != nil {
			block.Calls = append(block.Calls, *call)
		}
	case "function_declaration":
		if decl := a.extractFunction(node, source); decl != nil {
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

func (a *typescriptAdapter) extractCall(node *tree_sitter.Node, source []byte) *Call {
	fn := node.ChildByFieldName("function")
	if fn == nil {
		return nil
	}
	if fn.Kind() != "identifier" && fn.Kind() != "member_expression" {
		return nil
	}

	count := 0
	if args := findChildByKind(node, "arguments"); args != nil {
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
		IsMethod:      fn.Kind() == "member_expression",
	}
}

// ExtractVisibility resolves accessibility modifiers first, then the
// enclosing export context; declarations with neither are Unknown.
func (a *typescriptAdapter) ExtractVisibility(node *tree_sitter.Node, source []byte) Visibility {
	if mod := findChildByKind(node, "accessibility_modifier"); mod != nil {
		switch nodeText(mod, source) {
		case "private":
			return VisibilityPrivate
		case "protected":
			return VisibilityProtected
		default:
			return VisibilityPublic
		}
	}

	if parent := node.Parent(); parent != nil && parent.Kind() == "export_statement" {
		return VisibilityPublic
	}

	return VisibilityUnknown
}

// trimStringQuotes strips matching single or double quotes.
func trimStringQuotes(text string) string {
	text = strings.Trim(text, `"`)
	return strings.Trim(text, "'")
}
