package ir

// Visitor, Editor, Builder and Rewriter are the four double-dispatch
// traversal contracts every Node's Accept/Edit/Build/Rewrite method calls
// into, one method per concrete node kind. BaseVisitor/BaseEditor/
// BaseBuilder/BaseRewriter give every method a default implementation so a
// caller can embed one and override only the kinds it cares about.

type Visitor interface {
	VisitSourceText(*SourceText)
	VisitModuleDeclaration(*ModuleDeclaration)
	VisitPortDeclaration(*PortDeclaration)
	VisitNetDeclaration(*NetDeclaration)
	VisitRegDeclaration(*RegDeclaration)
	VisitParameterDeclaration(*ParameterDeclaration)
	VisitLocalparamDeclaration(*LocalparamDeclaration)
	VisitGenvarDeclaration(*GenvarDeclaration)
	VisitModuleInstantiation(*ModuleInstantiation)
	VisitPortConnection(*PortConnection)
	VisitSeqBlock(*SeqBlock)
	VisitParBlock(*ParBlock)
	VisitBlockingAssign(*BlockingAssign)
	VisitNonblockingAssign(*NonblockingAssign)
	VisitConditionalStatement(*ConditionalStatement)
	VisitCaseItem(*CaseItem)
	VisitCaseStatement(*CaseStatement)
	VisitLoopStatement(*LoopStatement)
	VisitTimingControlStatement(*TimingControlStatement)
	VisitSystemTaskEnableStatement(*SystemTaskEnableStatement)
	VisitAlwaysConstruct(*AlwaysConstruct)
	VisitInitialConstruct(*InitialConstruct)
	VisitContinuousAssign(*ContinuousAssign)
	VisitIfGenerateConstruct(*IfGenerateConstruct)
	VisitCaseGenerateConstruct(*CaseGenerateConstruct)
	VisitLoopGenerateConstruct(*LoopGenerateConstruct)
	VisitGenerateBlock(*GenerateBlock)
	VisitIdentifier(*Identifier)
	VisitNumber(*Number)
	VisitBinaryExpression(*BinaryExpression)
	VisitUnaryExpression(*UnaryExpression)
	VisitConditionalExpression(*ConditionalExpression)
	VisitConcatenationExpression(*ConcatenationExpression)
	VisitRangeExpression(*RangeExpression)
	VisitFeofExpression(*FeofExpression)
}

// BaseVisitor's methods are no-ops; embed it and override the kinds a pass
// cares about. Recursing into children is the embedder's job (typically
// from within its own VisitX override), since only it knows which Visitor
// value — itself — children should be dispatched to.
type BaseVisitor struct{}

func (BaseVisitor) VisitSourceText(n *SourceText)                           {}
func (BaseVisitor) VisitModuleDeclaration(n *ModuleDeclaration)             {}
func (BaseVisitor) VisitPortDeclaration(n *PortDeclaration)                 {}
func (BaseVisitor) VisitNetDeclaration(n *NetDeclaration)                   {}
func (BaseVisitor) VisitRegDeclaration(n *RegDeclaration)                   {}
func (BaseVisitor) VisitParameterDeclaration(n *ParameterDeclaration)       {}
func (BaseVisitor) VisitLocalparamDeclaration(n *LocalparamDeclaration)     {}
func (BaseVisitor) VisitGenvarDeclaration(n *GenvarDeclaration)             {}
func (BaseVisitor) VisitModuleInstantiation(n *ModuleInstantiation)         {}
func (BaseVisitor) VisitPortConnection(n *PortConnection)                   {}
func (BaseVisitor) VisitSeqBlock(n *SeqBlock)                               {}
func (BaseVisitor) VisitParBlock(n *ParBlock)                               {}
func (BaseVisitor) VisitBlockingAssign(n *BlockingAssign)                   {}
func (BaseVisitor) VisitNonblockingAssign(n *NonblockingAssign)             {}
func (BaseVisitor) VisitConditionalStatement(n *ConditionalStatement)       {}
func (BaseVisitor) VisitCaseItem(n *CaseItem)                               {}
func (BaseVisitor) VisitCaseStatement(n *CaseStatement)                     {}
func (BaseVisitor) VisitLoopStatement(n *LoopStatement)                     {}
func (BaseVisitor) VisitTimingControlStatement(n *TimingControlStatement)   {}
func (BaseVisitor) VisitSystemTaskEnableStatement(n *SystemTaskEnableStatement) {}
func (BaseVisitor) VisitAlwaysConstruct(n *AlwaysConstruct)                 {}
func (BaseVisitor) VisitInitialConstruct(n *InitialConstruct)               {}
func (BaseVisitor) VisitContinuousAssign(n *ContinuousAssign)               {}
func (BaseVisitor) VisitIfGenerateConstruct(n *IfGenerateConstruct)         {}
func (BaseVisitor) VisitCaseGenerateConstruct(n *CaseGenerateConstruct)     {}
func (BaseVisitor) VisitLoopGenerateConstruct(n *LoopGenerateConstruct)     {}
func (BaseVisitor) VisitGenerateBlock(n *GenerateBlock)                     {}
func (BaseVisitor) VisitIdentifier(n *Identifier)                           {}
func (BaseVisitor) VisitNumber(n *Number)                                   {}
func (BaseVisitor) VisitBinaryExpression(n *BinaryExpression)               {}
func (BaseVisitor) VisitUnaryExpression(n *UnaryExpression)                 {}
func (BaseVisitor) VisitConditionalExpression(n *ConditionalExpression)     {}
func (BaseVisitor) VisitConcatenationExpression(n *ConcatenationExpression) {}
func (BaseVisitor) VisitRangeExpression(n *RangeExpression)                 {}
func (BaseVisitor) VisitFeofExpression(n *FeofExpression)                   {}

// Editor mutates a node (and, by calling Edit on its children, the tree
// beneath it) in place.
type Editor interface {
	EditSourceText(*SourceText)
	EditModuleDeclaration(*ModuleDeclaration)
	EditPortDeclaration(*PortDeclaration)
	EditNetDeclaration(*NetDeclaration)
	EditRegDeclaration(*RegDeclaration)
	EditParameterDeclaration(*ParameterDeclaration)
	EditLocalparamDeclaration(*LocalparamDeclaration)
	EditGenvarDeclaration(*GenvarDeclaration)
	EditModuleInstantiation(*ModuleInstantiation)
	EditPortConnection(*PortConnection)
	EditSeqBlock(*SeqBlock)
	EditParBlock(*ParBlock)
	EditBlockingAssign(*BlockingAssign)
	EditNonblockingAssign(*NonblockingAssign)
	EditConditionalStatement(*ConditionalStatement)
	EditCaseItem(*CaseItem)
	EditCaseStatement(*CaseStatement)
	EditLoopStatement(*LoopStatement)
	EditTimingControlStatement(*TimingControlStatement)
	EditSystemTaskEnableStatement(*SystemTaskEnableStatement)
	EditAlwaysConstruct(*AlwaysConstruct)
	EditInitialConstruct(*InitialConstruct)
	EditContinuousAssign(*ContinuousAssign)
	EditIfGenerateConstruct(*IfGenerateConstruct)
	EditCaseGenerateConstruct(*CaseGenerateConstruct)
	EditLoopGenerateConstruct(*LoopGenerateConstruct)
	EditGenerateBlock(*GenerateBlock)
	EditIdentifier(*Identifier)
	EditNumber(*Number)
	EditBinaryExpression(*BinaryExpression)
	EditUnaryExpression(*UnaryExpression)
	EditConditionalExpression(*ConditionalExpression)
	EditConcatenationExpression(*ConcatenationExpression)
	EditRangeExpression(*RangeExpression)
	EditFeofExpression(*FeofExpression)
}

// BaseEditor's methods are no-ops; embed it and override the kinds a pass
// needs to mutate.
type BaseEditor struct{}

func (BaseEditor) EditSourceText(n *SourceText)                               {}
func (BaseEditor) EditModuleDeclaration(n *ModuleDeclaration)                 {}
func (BaseEditor) EditPortDeclaration(n *PortDeclaration)                     {}
func (BaseEditor) EditNetDeclaration(n *NetDeclaration)                       {}
func (BaseEditor) EditRegDeclaration(n *RegDeclaration)                       {}
func (BaseEditor) EditParameterDeclaration(n *ParameterDeclaration)           {}
func (BaseEditor) EditLocalparamDeclaration(n *LocalparamDeclaration)         {}
func (BaseEditor) EditGenvarDeclaration(n *GenvarDeclaration)                 {}
func (BaseEditor) EditModuleInstantiation(n *ModuleInstantiation)             {}
func (BaseEditor) EditPortConnection(n *PortConnection)                       {}
func (BaseEditor) EditSeqBlock(n *SeqBlock)                                   {}
func (BaseEditor) EditParBlock(n *ParBlock)                                   {}
func (BaseEditor) EditBlockingAssign(n *BlockingAssign)                       {}
func (BaseEditor) EditNonblockingAssign(n *NonblockingAssign)                 {}
func (BaseEditor) EditConditionalStatement(n *ConditionalStatement)           {}
func (BaseEditor) EditCaseItem(n *CaseItem)                                   {}
func (BaseEditor) EditCaseStatement(n *CaseStatement)                         {}
func (BaseEditor) EditLoopStatement(n *LoopStatement)                         {}
func (BaseEditor) EditTimingControlStatement(n *TimingControlStatement)       {}
func (BaseEditor) EditSystemTaskEnableStatement(n *SystemTaskEnableStatement) {}
func (BaseEditor) EditAlwaysConstruct(n *AlwaysConstruct)                     {}
func (BaseEditor) EditInitialConstruct(n *InitialConstruct)                   {}
func (BaseEditor) EditContinuousAssign(n *ContinuousAssign)                   {}
func (BaseEditor) EditIfGenerateConstruct(n *IfGenerateConstruct)             {}
func (BaseEditor) EditCaseGenerateConstruct(n *CaseGenerateConstruct)         {}
func (BaseEditor) EditLoopGenerateConstruct(n *LoopGenerateConstruct)         {}
func (BaseEditor) EditGenerateBlock(n *GenerateBlock)                         {}
func (BaseEditor) EditIdentifier(n *Identifier)                               {}
func (BaseEditor) EditNumber(n *Number)                                       {}
func (BaseEditor) EditBinaryExpression(n *BinaryExpression)                   {}
func (BaseEditor) EditUnaryExpression(n *UnaryExpression)                     {}
func (BaseEditor) EditConditionalExpression(n *ConditionalExpression)         {}
func (BaseEditor) EditConcatenationExpression(n *ConcatenationExpression)     {}
func (BaseEditor) EditRangeExpression(n *RangeExpression)                     {}
func (BaseEditor) EditFeofExpression(n *FeofExpression)                       {}

// Builder constructs a fresh replacement node from an existing one,
// returning it rather than mutating in place (spec.md §3: elaborate's
// instantiation inlining builds fresh clones rather than editing shared
// declarations).
type Builder interface {
	BuildSourceText(*SourceText) Node
	BuildModuleDeclaration(*ModuleDeclaration) Node
	BuildPortDeclaration(*PortDeclaration) Node
	BuildNetDeclaration(*NetDeclaration) Node
	BuildRegDeclaration(*RegDeclaration) Node
	BuildParameterDeclaration(*ParameterDeclaration) Node
	BuildLocalparamDeclaration(*LocalparamDeclaration) Node
	BuildGenvarDeclaration(*GenvarDeclaration) Node
	BuildModuleInstantiation(*ModuleInstantiation) Node
	BuildPortConnection(*PortConnection) Node
	BuildSeqBlock(*SeqBlock) Node
	BuildParBlock(*ParBlock) Node
	BuildBlockingAssign(*BlockingAssign) Node
	BuildNonblockingAssign(*NonblockingAssign) Node
	BuildConditionalStatement(*ConditionalStatement) Node
	BuildCaseItem(*CaseItem) Node
	BuildCaseStatement(*CaseStatement) Node
	BuildLoopStatement(*LoopStatement) Node
	BuildTimingControlStatement(*TimingControlStatement) Node
	BuildSystemTaskEnableStatement(*SystemTaskEnableStatement) Node
	BuildAlwaysConstruct(*AlwaysConstruct) Node
	BuildInitialConstruct(*InitialConstruct) Node
	BuildContinuousAssign(*ContinuousAssign) Node
	BuildIfGenerateConstruct(*IfGenerateConstruct) Node
	BuildCaseGenerateConstruct(*CaseGenerateConstruct) Node
	BuildLoopGenerateConstruct(*LoopGenerateConstruct) Node
	BuildGenerateBlock(*GenerateBlock) Node
	BuildIdentifier(*Identifier) Node
	BuildNumber(*Number) Node
	BuildBinaryExpression(*BinaryExpression) Node
	BuildUnaryExpression(*UnaryExpression) Node
	BuildConditionalExpression(*ConditionalExpression) Node
	BuildConcatenationExpression(*ConcatenationExpression) Node
	BuildRangeExpression(*RangeExpression) Node
	BuildFeofExpression(*FeofExpression) Node
}

// BaseBuilder's methods default to Clone(); embed it and override only the
// kinds a pass needs to rebuild differently.
type BaseBuilder struct{}

func (BaseBuilder) BuildSourceText(n *SourceText) Node                               { return n.Clone() }
func (BaseBuilder) BuildModuleDeclaration(n *ModuleDeclaration) Node                 { return n.Clone() }
func (BaseBuilder) BuildPortDeclaration(n *PortDeclaration) Node                     { return n.Clone() }
func (BaseBuilder) BuildNetDeclaration(n *NetDeclaration) Node                       { return n.Clone() }
func (BaseBuilder) BuildRegDeclaration(n *RegDeclaration) Node                       { return n.Clone() }
func (BaseBuilder) BuildParameterDeclaration(n *ParameterDeclaration) Node           { return n.Clone() }
func (BaseBuilder) BuildLocalparamDeclaration(n *LocalparamDeclaration) Node         { return n.Clone() }
func (BaseBuilder) BuildGenvarDeclaration(n *GenvarDeclaration) Node                 { return n.Clone() }
func (BaseBuilder) BuildModuleInstantiation(n *ModuleInstantiation) Node             { return n.Clone() }
func (BaseBuilder) BuildPortConnection(n *PortConnection) Node                       { return n.Clone() }
func (BaseBuilder) BuildSeqBlock(n *SeqBlock) Node                                   { return n.Clone() }
func (BaseBuilder) BuildParBlock(n *ParBlock) Node                                   { return n.Clone() }
func (BaseBuilder) BuildBlockingAssign(n *BlockingAssign) Node                       { return n.Clone() }
func (BaseBuilder) BuildNonblockingAssign(n *NonblockingAssign) Node                 { return n.Clone() }
func (BaseBuilder) BuildConditionalStatement(n *ConditionalStatement) Node           { return n.Clone() }
func (BaseBuilder) BuildCaseItem(n *CaseItem) Node                                   { return n.Clone() }
func (BaseBuilder) BuildCaseStatement(n *CaseStatement) Node                         { return n.Clone() }
func (BaseBuilder) BuildLoopStatement(n *LoopStatement) Node                         { return n.Clone() }
func (BaseBuilder) BuildTimingControlStatement(n *TimingControlStatement) Node       { return n.Clone() }
func (BaseBuilder) BuildSystemTaskEnableStatement(n *SystemTaskEnableStatement) Node { return n.Clone() }
func (BaseBuilder) BuildAlwaysConstruct(n *AlwaysConstruct) Node                     { return n.Clone() }
func (BaseBuilder) BuildInitialConstruct(n *InitialConstruct) Node                   { return n.Clone() }
func (BaseBuilder) BuildContinuousAssign(n *ContinuousAssign) Node                   { return n.Clone() }
func (BaseBuilder) BuildIfGenerateConstruct(n *IfGenerateConstruct) Node             { return n.Clone() }
func (BaseBuilder) BuildCaseGenerateConstruct(n *CaseGenerateConstruct) Node         { return n.Clone() }
func (BaseBuilder) BuildLoopGenerateConstruct(n *LoopGenerateConstruct) Node         { return n.Clone() }
func (BaseBuilder) BuildGenerateBlock(n *GenerateBlock) Node                         { return n.Clone() }
func (BaseBuilder) BuildIdentifier(n *Identifier) Node                               { return n.Clone() }
func (BaseBuilder) BuildNumber(n *Number) Node                                       { return n.Clone() }
func (BaseBuilder) BuildBinaryExpression(n *BinaryExpression) Node                   { return n.Clone() }
func (BaseBuilder) BuildUnaryExpression(n *UnaryExpression) Node                     { return n.Clone() }
func (BaseBuilder) BuildConditionalExpression(n *ConditionalExpression) Node         { return n.Clone() }
func (BaseBuilder) BuildConcatenationExpression(n *ConcatenationExpression) Node     { return n.Clone() }
func (BaseBuilder) BuildRangeExpression(n *RangeExpression) Node                     { return n.Clone() }
func (BaseBuilder) BuildFeofExpression(n *FeofExpression) Node                       { return n.Clone() }

// Rewriter replaces a node in its parent's slot, returning the replacement
// (or the same node, unchanged) so the caller can splice it back in.
type Rewriter interface {
	RewriteSourceText(*SourceText) Node
	RewriteModuleDeclaration(*ModuleDeclaration) Node
	RewritePortDeclaration(*PortDeclaration) Node
	RewriteNetDeclaration(*NetDeclaration) Node
	RewriteRegDeclaration(*RegDeclaration) Node
	RewriteParameterDeclaration(*ParameterDeclaration) Node
	RewriteLocalparamDeclaration(*LocalparamDeclaration) Node
	RewriteGenvarDeclaration(*GenvarDeclaration) Node
	RewriteModuleInstantiation(*ModuleInstantiation) Node
	RewritePortConnection(*PortConnection) Node
	RewriteSeqBlock(*SeqBlock) Node
	RewriteParBlock(*ParBlock) Node
	RewriteBlockingAssign(*BlockingAssign) Node
	RewriteNonblockingAssign(*NonblockingAssign) Node
	RewriteConditionalStatement(*ConditionalStatement) Node
	RewriteCaseItem(*CaseItem) Node
	RewriteCaseStatement(*CaseStatement) Node
	RewriteLoopStatement(*LoopStatement) Node
	RewriteTimingControlStatement(*TimingControlStatement) Node
	RewriteSystemTaskEnableStatement(*SystemTaskEnableStatement) Node
	RewriteAlwaysConstruct(*AlwaysConstruct) Node
	RewriteInitialConstruct(*InitialConstruct) Node
	RewriteContinuousAssign(*ContinuousAssign) Node
	RewriteIfGenerateConstruct(*IfGenerateConstruct) Node
	RewriteCaseGenerateConstruct(*CaseGenerateConstruct) Node
	RewriteLoopGenerateConstruct(*LoopGenerateConstruct) Node
	RewriteGenerateBlock(*GenerateBlock) Node
	RewriteIdentifier(*Identifier) Node
	RewriteNumber(*Number) Node
	RewriteBinaryExpression(*BinaryExpression) Node
	RewriteUnaryExpression(*UnaryExpression) Node
	RewriteConditionalExpression(*ConditionalExpression) Node
	RewriteConcatenationExpression(*ConcatenationExpression) Node
	RewriteRangeExpression(*RangeExpression) Node
	RewriteFeofExpression(*FeofExpression) Node
}

// BaseRewriter's methods default to returning the node unchanged; embed it
// and override the kinds a pass replaces.
type BaseRewriter struct{}

func (BaseRewriter) RewriteSourceText(n *SourceText) Node                               { return n }
func (BaseRewriter) RewriteModuleDeclaration(n *ModuleDeclaration) Node                 { return n }
func (BaseRewriter) RewritePortDeclaration(n *PortDeclaration) Node                     { return n }
func (BaseRewriter) RewriteNetDeclaration(n *NetDeclaration) Node                       { return n }
func (BaseRewriter) RewriteRegDeclaration(n *RegDeclaration) Node                       { return n }
func (BaseRewriter) RewriteParameterDeclaration(n *ParameterDeclaration) Node           { return n }
func (BaseRewriter) RewriteLocalparamDeclaration(n *LocalparamDeclaration) Node         { return n }
func (BaseRewriter) RewriteGenvarDeclaration(n *GenvarDeclaration) Node                 { return n }
func (BaseRewriter) RewriteModuleInstantiation(n *ModuleInstantiation) Node             { return n }
func (BaseRewriter) RewritePortConnection(n *PortConnection) Node                       { return n }
func (BaseRewriter) RewriteSeqBlock(n *SeqBlock) Node                                   { return n }
func (BaseRewriter) RewriteParBlock(n *ParBlock) Node                                   { return n }
func (BaseRewriter) RewriteBlockingAssign(n *BlockingAssign) Node                       { return n }
func (BaseRewriter) RewriteNonblockingAssign(n *NonblockingAssign) Node                 { return n }
func (BaseRewriter) RewriteConditionalStatement(n *ConditionalStatement) Node           { return n }
func (BaseRewriter) RewriteCaseItem(n *CaseItem) Node                                   { return n }
func (BaseRewriter) RewriteCaseStatement(n *CaseStatement) Node                         { return n }
func (BaseRewriter) RewriteLoopStatement(n *LoopStatement) Node                         { return n }
func (BaseRewriter) RewriteTimingControlStatement(n *TimingControlStatement) Node       { return n }
func (BaseRewriter) RewriteSystemTaskEnableStatement(n *SystemTaskEnableStatement) Node { return n }
func (BaseRewriter) RewriteAlwaysConstruct(n *AlwaysConstruct) Node                     { return n }
func (BaseRewriter) RewriteInitialConstruct(n *InitialConstruct) Node                   { return n }
func (BaseRewriter) RewriteContinuousAssign(n *ContinuousAssign) Node                   { return n }
func (BaseRewriter) RewriteIfGenerateConstruct(n *IfGenerateConstruct) Node             { return n }
func (BaseRewriter) RewriteCaseGenerateConstruct(n *CaseGenerateConstruct) Node         { return n }
func (BaseRewriter) RewriteLoopGenerateConstruct(n *LoopGenerateConstruct) Node         { return n }
func (BaseRewriter) RewriteGenerateBlock(n *GenerateBlock) Node                         { return n }
func (BaseRewriter) RewriteIdentifier(n *Identifier) Node                               { return n }
func (BaseRewriter) RewriteNumber(n *Number) Node                                       { return n }
func (BaseRewriter) RewriteBinaryExpression(n *BinaryExpression) Node                   { return n }
func (BaseRewriter) RewriteUnaryExpression(n *UnaryExpression) Node                     { return n }
func (BaseRewriter) RewriteConditionalExpression(n *ConditionalExpression) Node         { return n }
func (BaseRewriter) RewriteConcatenationExpression(n *ConcatenationExpression) Node     { return n }
func (BaseRewriter) RewriteRangeExpression(n *RangeExpression) Node                     { return n }
func (BaseRewriter) RewriteFeofExpression(n *FeofExpression) Node                       { return n }
