// Package state defines the shared task state that flows through every node
// of the blog-generation workflow, and the invariants every agent must
// preserve when it reads and writes it.
package state

import (
	"sync"
	"time"
)

// TargetLength selects a size preset that drives section/image/code budgets
// and the StyleProfile loop bounds.
type TargetLength string

const (
	LengthMini   TargetLength = "mini"
	LengthShort  TargetLength = "short"
	LengthMedium TargetLength = "medium"
	LengthLong   TargetLength = "long"
	LengthCustom TargetLength = "custom"
)

// MaxSearchCount returns the knowledge-refinement loop bound for a length preset.
func (t TargetLength) MaxSearchCount() int {
	switch t {
	case LengthMini:
		return 2
	case LengthShort:
		return 3
	case LengthMedium:
		return 5
	case LengthLong:
		return 8
	default:
		return 5
	}
}

// ImageBudget returns the maximum number of images (IMAGE_BUDGET in spec.md §8).
func (t TargetLength) ImageBudget() int {
	switch t {
	case LengthMini:
		return 3
	case LengthShort:
		return 5
	case LengthMedium:
		return 8
	case LengthLong:
		return 12
	default:
		return 8
	}
}

// KeyConcept is a named concept surfaced by the researcher.
type KeyConcept struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// SearchResult is one item returned by a search provider.
type SearchResult struct {
	Title      string `json:"title"`
	URL        string `json:"url"`
	Content    string `json:"content"`
	Source     string `json:"source"`
	SourceType string `json:"source_type"`
}

// ReferenceLink is a footer-level citation not tied to an in-text placeholder.
type ReferenceLink struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// ImageType enumerates the illustration categories an outline section may request.
type ImageType string

const (
	ImageNone       ImageType = "none"
	ImageFlowchart  ImageType = "flowchart"
	ImageInfograph  ImageType = "infographic"
	ImageComparison ImageType = "comparison"
	ImageFramework  ImageType = "framework"
	ImageTimeline   ImageType = "timeline"
	ImageScene      ImageType = "scene"
	ImageAIImage    ImageType = "ai_image"
)

// NarrativeRole classifies what job a section does in the article's arc.
type NarrativeRole string

const (
	RoleHook        NarrativeRole = "hook"
	RoleWhat        NarrativeRole = "what"
	RoleWhy         NarrativeRole = "why"
	RoleHow         NarrativeRole = "how"
	RoleCompare     NarrativeRole = "compare"
	RoleDeepDive    NarrativeRole = "deep_dive"
	RoleVerify      NarrativeRole = "verify"
	RoleSummary     NarrativeRole = "summary"
	RoleCatalogItem NarrativeRole = "catalog_item"
)

// NarrativeMode classifies the whole article's structure.
type NarrativeMode string

const (
	ModeWhatWhyHow      NarrativeMode = "what-why-how"
	ModeProblemSolution NarrativeMode = "problem-solution"
	ModeBeforeAfter     NarrativeMode = "before-after"
	ModeTutorial        NarrativeMode = "tutorial"
	ModeDeepDive        NarrativeMode = "deep-dive"
	ModeCatalog         NarrativeMode = "catalog"
)

// DepthRequirement selects the depth bar the questioner holds sections to.
type DepthRequirement string

const (
	DepthMinimal DepthRequirement = "minimal"
	DepthShallow DepthRequirement = "shallow"
	DepthMedium  DepthRequirement = "medium"
	DepthDeep    DepthRequirement = "deep"
)

// DepthThreshold returns the minimum depth_score (0-100) a section must clear.
func (d DepthRequirement) DepthThreshold() int {
	switch d {
	case DepthMinimal:
		return 40
	case DepthShallow:
		return 55
	case DepthDeep:
		return 80
	default: // medium
		return 65
	}
}

// NarrativeFlow describes the reader's journey across the whole outline.
type NarrativeFlow struct {
	ReaderStart string   `json:"reader_start"`
	ReaderEnd   string   `json:"reader_end"`
	LogicChain  []string `json:"logic_chain"` // invariant: len >= 3
}

// SectionPlan is one outline entry produced by the planner.
type SectionPlan struct {
	ID               string        `json:"id"`
	Title            string        `json:"title"`
	KeyConcept       string        `json:"key_concept"`
	ImageType        ImageType     `json:"image_type"`
	ImageDescription string        `json:"image_description"`
	NarrativeRole    NarrativeRole `json:"narrative_role"`
}

// Outline is the plan the writer expands into Sections.
type Outline struct {
	Title         string        `json:"title"`
	Subtitle      string        `json:"subtitle"`
	Sections      []SectionPlan `json:"sections"`
	NarrativeMode NarrativeMode `json:"narrative_mode"`
	NarrativeFlow NarrativeFlow `json:"narrative_flow"`
}

// Section is a fully-drafted piece of the article body.
type Section struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	Content       string        `json:"content"`
	ImageIDs      []string      `json:"image_ids"`
	CodeIDs       []string      `json:"code_ids"`
	NarrativeRole NarrativeRole `json:"narrative_role"`
}

// CodeBlock is a generated code sample bound to a `[CODE: id - ...]` placeholder.
type CodeBlock struct {
	ID          string `json:"id"` // "code_<n>"
	Code        string `json:"code"`
	Output      string `json:"output"`
	Language    string `json:"language"`
	Explanation string `json:"explanation"`
}

// RenderMethod is how an Image was produced.
type RenderMethod string

const (
	RenderMermaid RenderMethod = "mermaid"
	RenderAIImage RenderMethod = "ai_image"
	RenderSVG     RenderMethod = "svg"
)

// Image is a generated illustration bound to an `[IMAGE: type - ...]` placeholder.
type Image struct {
	ID           string       `json:"id"` // "img_<n>"
	RenderMethod RenderMethod `json:"render_method"`
	Content      string       `json:"content"`
	Caption      string       `json:"caption"`
	RenderedPath string       `json:"rendered_path,omitempty"`
}

// GapType classifies a detected knowledge gap.
type GapType string

const (
	GapMissingData  GapType = "missing_data"
	GapVagueConcept GapType = "vague_concept"
	GapNoExample    GapType = "no_example"
)

// KnowledgeGap is one item the search-coordinator wants filled.
type KnowledgeGap struct {
	GapType        GapType `json:"gap_type"`
	Description    string  `json:"description"`
	SuggestedQuery string  `json:"suggested_query"`
}

// QuestionResult is a per-section depth verdict from the questioner.
type QuestionResult struct {
	SectionID       string   `json:"section_id"`
	IsDetailed      bool     `json:"is_detailed_enough"`
	DepthScore      int      `json:"depth_score"`
	VaguePoints     []string `json:"vague_points"`
}

// SectionScores are the four dimensions the questioner's evaluate_section scores.
type SectionScores struct {
	InformationDensity int `json:"information_density"`
	LogicalCoherence   int `json:"logical_coherence"`
	ProfessionalDepth  int `json:"professional_depth"`
	ExpressionQuality  int `json:"expression_quality"`
}

func (s SectionScores) Overall() float64 {
	return float64(s.InformationDensity+s.LogicalCoherence+s.ProfessionalDepth+s.ExpressionQuality) / 4.0
}

// SectionEvaluation is one section's quality scorecard.
type SectionEvaluation struct {
	SectionID               string        `json:"section_id"`
	Scores                  SectionScores `json:"scores"`
	OverallQuality          float64       `json:"overall_quality"`
	SpecificIssues          []string      `json:"specific_issues"`
	ImprovementSuggestions  []string      `json:"improvement_suggestions"`
}

// Severity classifies a review issue.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// ReviewIssue is one defect the reviewer (or thread/voice checker) raised.
type ReviewIssue struct {
	SectionID   string   `json:"section_id"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
	Suggestion  string   `json:"suggestion,omitempty"`
}

// Shared is the single growing task state every agent reads and writes.
//
// Shared is not safe for concurrent field-by-field mutation: the workflow
// driver owns it and hands it to one node at a time (spec.md §5). Parallel
// writers inside a node write into private slices that the middleware.Reducer
// hook merges back in, per ApplyReducers in reducers.go.
type Shared struct {
	mu sync.Mutex

	// --- immutable-after-init request parameters ---
	Topic              string       `json:"topic"`
	ArticleType        string       `json:"article_type"`
	TargetAudience     string       `json:"target_audience"`
	TargetLength       TargetLength `json:"target_length"`
	AudienceAdaptation string       `json:"audience_adaptation"`

	TraceID string `json:"trace_id"`
	TaskID  string `json:"task_id"`

	// --- research ---
	BackgroundKnowledge    string          `json:"background_knowledge"`
	KeyConcepts            []KeyConcept    `json:"key_concepts"`
	SearchResults          []SearchResult  `json:"search_results"`
	ReferenceLinks         []ReferenceLink `json:"reference_links"`
	DistilledSources       map[string]any  `json:"distilled_sources,omitempty"`
	CommonThemes           []string        `json:"common_themes,omitempty"`
	Contradictions         []string        `json:"contradictions,omitempty"`
	ContentGaps            []string        `json:"content_gaps,omitempty"`
	UniqueAngles           []string        `json:"unique_angles,omitempty"`
	WritingRecommendations []string        `json:"writing_recommendations,omitempty"`
	LearningObjectives     []string        `json:"learning_objectives,omitempty"`
	VerbatimData           []string        `json:"verbatim_data,omitempty"`
	AccumulatedKnowledge   []string        `json:"accumulated_knowledge,omitempty"`

	// --- plan & draft ---
	Outline     Outline     `json:"outline"`
	Sections    []Section   `json:"sections"`
	CodeBlocks  []CodeBlock `json:"code_blocks"`
	Images      []Image     `json:"images"`

	// --- loop counters (monotonically non-decreasing) ---
	SearchCount         int `json:"search_count"`
	QuestioningCount    int `json:"questioning_count"`
	SectionImproveCount int `json:"section_improve_count"`
	RevisionCount       int `json:"revision_count"`

	// --- quality signals ---
	KnowledgeGaps            []KnowledgeGap       `json:"knowledge_gaps"`
	QuestionResults          []QuestionResult     `json:"question_results"`
	AllSectionsDetailed      bool                 `json:"all_sections_detailed"`
	SectionEvaluations       []SectionEvaluation  `json:"section_evaluations"`
	NeedsSectionImprovement  bool                 `json:"needs_section_improvement"`
	PrevSectionAvgScore      float64              `json:"prev_section_avg_score"`
	ReviewScore              float64              `json:"review_score"`
	ReviewIssues             []ReviewIssue        `json:"review_issues"`
	ReviewApproved           bool                 `json:"review_approved"`
	ThreadIssues             []string             `json:"thread_issues"`
	VoiceIssues              []string             `json:"voice_issues"`

	// --- derived outputs ---
	FinalMarkdown   string   `json:"final_markdown"`
	SEOKeywords     []string `json:"seo_keywords"`
	SocialSummary   string   `json:"social_summary"`
	MetaDescription string   `json:"meta_description"`

	// --- error channel ---
	Error        string   `json:"error,omitempty"`
	ErrorHistory []string `json:"error_history,omitempty"`
	NodeErrors   []string `json:"-"` // per-node scratch, cleared by ErrorTrackingMiddleware

	// --- token/context bookkeeping (consumed by middleware) ---
	UsedTokens      int            `json:"used_tokens"`
	SafeInputLimit  int            `json:"safe_input_limit"`
	BudgetSpent     map[string]int `json:"budget_spent,omitempty"`
	PrefetchDocs    []string       `json:"prefetch_docs,omitempty"`
	DocumentIDs     []string       `json:"document_ids,omitempty"`
	HumanizerSkips  map[string]bool `json:"-"`

	// ContextSummary holds the Layer-3 ReSum-style running summary that
	// replaces several context fields once usage crosses the hard ceiling
	// (spec.md §4.2 item 5).
	ContextSummary string `json:"context_summary,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// New constructs the initial state for a run. Topic/type/audience/length are
// immutable afterward (invariant spec.md §3).
func New(topic, articleType, targetAudience string, targetLength TargetLength) *Shared {
	return &Shared{
		Topic:          topic,
		ArticleType:    articleType,
		TargetAudience: targetAudience,
		TargetLength:   targetLength,
		BudgetSpent:    map[string]int{},
		HumanizerSkips: map[string]bool{},
		CreatedAt:      time.Now(),
	}
}

// Clone performs a deep-enough copy for safe use as a node's private working
// copy inside the parallel executor (slices and maps are copied; the mutex
// is fresh).
func (s *Shared) Clone() *Shared {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *s
	c.mu = sync.Mutex{}
	c.KeyConcepts = append([]KeyConcept(nil), s.KeyConcepts...)
	c.SearchResults = append([]SearchResult(nil), s.SearchResults...)
	c.ReferenceLinks = append([]ReferenceLink(nil), s.ReferenceLinks...)
	c.Sections = append([]Section(nil), s.Sections...)
	c.CodeBlocks = append([]CodeBlock(nil), s.CodeBlocks...)
	c.Images = append([]Image(nil), s.Images...)
	c.KnowledgeGaps = append([]KnowledgeGap(nil), s.KnowledgeGaps...)
	c.QuestionResults = append([]QuestionResult(nil), s.QuestionResults...)
	c.SectionEvaluations = append([]SectionEvaluation(nil), s.SectionEvaluations...)
	c.ReviewIssues = append([]ReviewIssue(nil), s.ReviewIssues...)
	outlineSections := append([]SectionPlan(nil), s.Outline.Sections...)
	c.Outline.Sections = outlineSections
	return &c
}

// SetFatal marks the state as fatally errored (spec.md §3 invariant e):
// every node downstream becomes a no-op and the assembler emits nothing.
func (s *Shared) SetFatal(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Error == "" {
		s.Error = err.Error()
	}
}

// Failed reports whether a fatal error has already short-circuited the run.
func (s *Shared) Failed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Error != ""
}

// RecordNonFatal appends to the non-fatal error history without stopping the run.
func (s *Shared) RecordNonFatal(agent string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ErrorHistory = append(s.ErrorHistory, agent+": "+err.Error())
}
