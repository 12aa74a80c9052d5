package agent

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/blogforge/core/executor"
	"github.com/blogforge/core/external"
	"github.com/blogforge/core/llm"
	"github.com/blogforge/core/postprocess"
	"github.com/blogforge/core/state"
)

// imagePlaceholder matches `[IMAGE: <type> - <description>]`.
var imagePlaceholder = regexp.MustCompile(`\[IMAGE:\s*([a-zA-Z_]+)\s*-\s*([^\]]+)\]`)

// illustrationSignals scores keyword hits per category for type inference
// when a missing-diagram detector reply omits its type (spec.md §4.5.7
// "keyword-signal scoring over six categories").
var illustrationSignals = map[state.ImageType][]string{
	state.ImageFlowchart:  {"step", "process", "flow", "sequence", "pipeline"},
	state.ImageInfograph:  {"statistic", "data point", "percentage", "breakdown"},
	state.ImageComparison: {"versus", "compare", "vs.", "difference between"},
	state.ImageFramework:  {"architecture", "framework", "layer", "component"},
	state.ImageTimeline:   {"timeline", "history", "evolution", "over time"},
	state.ImageScene:      {"scenario", "illustration of", "depicting", "scene"},
}

// mermaidRepairMaxRetries bounds the repair-pass loop (spec.md §4.5.7 "up
// to 2 LLM repair passes").
const mermaidRepairMaxRetries = 2

type imageTask struct {
	id          string
	imgType     state.ImageType
	description string
	sectionID   string
}

// Artist is spec.md §4.5.7's ArtistAgent. Full mode illustrates the whole
// article per-task; mini-section mode (mini/short lengths) produces one
// shared-style image per section instead.
type Artist struct {
	Client      llm.Client
	Images      external.ImageService
	Config      executor.Config
	ImageBudget int
	MiniMode    bool
}

func (a *Artist) Run(ctx context.Context, s *state.Shared) (*state.Shared, error) {
	if skip(s) {
		return s, nil
	}
	if a.MiniMode {
		return a.runMiniMode(ctx, s)
	}
	return a.runFullMode(ctx, s)
}

func (a *Artist) runFullMode(ctx context.Context, s *state.Shared) (*state.Shared, error) {
	tasks := a.collectTasks(ctx, s)
	budget := a.budget(s.TargetLength)
	if len(tasks) > budget {
		tasks = tasks[:budget]
	}
	if len(tasks) == 0 {
		return s, nil
	}

	results := a.runTasks(ctx, tasks)
	bySection := make(map[string][]string, len(tasks))

	images := make([]state.Image, 0, len(results))
	for i, r := range results {
		if r.err != nil {
			s.RecordNonFatal("artist", r.err)
			continue
		}
		images = append(images, r.image)
		bySection[tasks[i].sectionID] = append(bySection[tasks[i].sectionID], r.image.ID)
	}
	s.Images = append(s.Images, images...)

	for i, sec := range s.Sections {
		s.Sections[i].ImageIDs = append(s.Sections[i].ImageIDs, bySection[sec.ID]...)
	}
	return s, nil
}

func (a *Artist) runMiniMode(ctx context.Context, s *state.Shared) (*state.Shared, error) {
	for i, sec := range s.Sections {
		sec.Content = a.replaceASCIIFlowcharts(sec.Content)
		s.Sections[i] = sec
	}

	tasks := make([]executor.Task[state.Image], len(s.Sections))
	for i, sec := range s.Sections {
		idx := i
		desc := sec.Title
		tasks[idx] = executor.Task[state.Image]{
			Name: sec.ID,
			Fn: func(ctx context.Context) (state.Image, error) {
				return a.generate(ctx, "img_"+strconv.Itoa(idx+1), state.ImageScene, desc, s.Topic)
			},
		}
	}
	results, err := executor.Run(ctx, tasks, a.Config)
	if err != nil {
		s.SetFatal(err)
		return s, err
	}
	for i, r := range results {
		if !r.Success {
			s.RecordNonFatal("artist", r.Err)
			continue
		}
		s.Images = append(s.Images, r.Value)
		s.Sections[i].ImageIDs = append(s.Sections[i].ImageIDs, r.Value.ID)
	}
	return s, nil
}

// collectTasks gathers image tasks from outline declarations (source a),
// in-section placeholders (source b), and an LLM pass over every remaining
// section asking whether it's missing a diagram it would benefit from
// (source c) — spec.md §4.5.7's three full-mode sources, in that order so
// the later budget truncation favors author-declared and explicit-in-text
// images over model-suggested ones.
func (a *Artist) collectTasks(ctx context.Context, s *state.Shared) []imageTask {
	var tasks []imageTask
	n := 0
	covered := make(map[string]bool, len(s.Sections))

	for _, sec := range s.Outline.Sections {
		if sec.ImageType != state.ImageNone && sec.ImageDescription != "" {
			n++
			tasks = append(tasks, imageTask{
				id:          "img_" + strconv.Itoa(n),
				imgType:     sec.ImageType,
				description: sec.ImageDescription,
				sectionID:   sec.ID,
			})
			covered[sec.ID] = true
		}
	}
	for _, sec := range s.Sections {
		for _, m := range imagePlaceholder.FindAllStringSubmatch(sec.Content, -1) {
			n++
			imgType := state.ImageType(m[1])
			if imgType == "" {
				imgType = a.inferType(m[2])
			}
			tasks = append(tasks, imageTask{
				id:          "img_" + strconv.Itoa(n),
				imgType:     imgType,
				description: m[2],
				sectionID:   sec.ID,
			})
			covered[sec.ID] = true
		}
	}

	tasks = append(tasks, a.detectMissingDiagrams(ctx, s, covered, &n)...)
	return tasks
}

// diagramDetection is the missing-diagram detector's per-section LLM reply.
type diagramDetection struct {
	NeedsDiagram bool   `json:"needs_diagram"`
	ImageType    string `json:"image_type"`
	Description  string `json:"description"`
}

// detectMissingDiagrams is full mode's source (c): one LLM call per section
// not already covered by an outline-declared or in-text placeholder image,
// asking whether the section would be clearer with a diagram it currently
// lacks. Runs through executor.Run so the detector calls fan out with the
// same bounded concurrency as image generation itself.
func (a *Artist) detectMissingDiagrams(ctx context.Context, s *state.Shared, covered map[string]bool, n *int) []imageTask {
	var candidates []state.Section
	for _, sec := range s.Sections {
		if !covered[sec.ID] {
			candidates = append(candidates, sec)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	detectTasks := make([]executor.Task[*imageTask], len(candidates))
	for i, sec := range candidates {
		sec := sec
		detectTasks[i] = executor.Task[*imageTask]{
			Name: sec.ID,
			Fn: func(ctx context.Context) (*imageTask, error) {
				prompt := "Section \"" + sec.Title + "\":\n" + truncate(sec.Content, 1200) +
					"\n\nWould a diagram or illustration meaningfully help a reader understand this " +
					"section, and it doesn't already have one? Respond as JSON: {\"needs_diagram\": " +
					"true|false, \"image_type\": \"flowchart|infographic|comparison|framework|timeline|" +
					"scene\", \"description\": \"<what to depict, empty if needs_diagram is false>\"}."
				var d diagramDetection
				if err := chatJSON(ctx, a.Client, "", prompt, "artist:detect", &d); err != nil {
					return nil, err
				}
				if !d.NeedsDiagram || d.Description == "" {
					return nil, nil
				}
				imgType := state.ImageType(d.ImageType)
				if imgType == "" {
					imgType = a.inferType(d.Description)
				}
				return &imageTask{imgType: imgType, description: d.Description, sectionID: sec.ID}, nil
			},
		}
	}

	results, _ := executor.Run(ctx, detectTasks, a.Config)
	var found []imageTask
	for _, r := range results {
		if !r.Success || r.Value == nil {
			continue
		}
		t := *r.Value
		*n++
		t.id = "img_" + strconv.Itoa(*n)
		found = append(found, t)
	}
	return found
}

func (a *Artist) inferType(description string) state.ImageType {
	best := state.ImageFlowchart
	bestScore := -1
	for t, keywords := range illustrationSignals {
		score := 0
		for _, k := range keywords {
			if hasAny(description, k) {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			best = t
		}
	}
	return best
}

type artistResult struct {
	image state.Image
	err   error
}

func (a *Artist) runTasks(ctx context.Context, tasks []imageTask) []artistResult {
	execTasks := make([]executor.Task[artistResult], len(tasks))
	for i, t := range tasks {
		task := t
		execTasks[i] = executor.Task[artistResult]{
			Name: task.id,
			Fn: func(ctx context.Context) (artistResult, error) {
				img, err := a.generate(ctx, task.id, task.imgType, task.description, "")
				return artistResult{image: img, err: err}, nil
			},
		}
	}
	results, _ := executor.Run(ctx, execTasks, a.Config)
	out := make([]artistResult, len(results))
	for i, r := range results {
		out[i] = r.Value
	}
	return out
}

type imagePlan struct {
	RenderMethod string `json:"render_method"`
	Content      string `json:"content"`
	Caption      string `json:"caption"`
	ImagePrompt  string `json:"image_prompt"`
}

func (a *Artist) generate(ctx context.Context, id string, imgType state.ImageType, description, topic string) (state.Image, error) {
	prompt := "Illustrate \"" + description + "\" (type: " + string(imgType) + ") for an article" +
		topicSuffix(topic) + ". Choose either a Mermaid diagram/SVG source, or delegate to an AI image " +
		"generator. Respond as JSON: {\"render_method\": \"mermaid|svg|ai_image\", \"content\": " +
		"\"<mermaid or svg source, empty if ai_image>\", \"caption\": ..., \"image_prompt\": " +
		"\"<prompt for the image generator, only when ai_image>\"}."

	var plan imagePlan
	if err := chatJSON(ctx, a.Client, "", prompt, "artist:plan", &plan); err != nil {
		return state.Image{}, err
	}

	method := state.RenderMethod(plan.RenderMethod)
	img := state.Image{ID: id, RenderMethod: method, Caption: plan.Caption}

	switch method {
	case state.RenderMermaid:
		img.Content = a.sanitizeAndValidate(ctx, plan.Content, description)
	case state.RenderAIImage:
		if a.Images == nil {
			img.Content = plan.ImagePrompt
			return img, nil
		}
		result, err := a.Images.Generate(ctx, external.ImageGenerationRequest{
			Prompt:      plan.ImagePrompt,
			AspectRatio: external.AspectWide,
		})
		if err != nil {
			return img, err
		}
		img.RenderedPath = firstNonEmpty(result.OSSURL, result.URL, result.LocalPath)
	default:
		img.Content = plan.Content
	}
	return img, nil
}

func (a *Artist) sanitizeAndValidate(ctx context.Context, code, description string) string {
	code = postprocess.SanitizeMermaid(code)
	for attempt := 0; attempt < mermaidRepairMaxRetries; attempt++ {
		if ok, _ := postprocess.ValidateMermaid(code); ok {
			return code
		}
		repaired, err := chatRepair(ctx, a.Client, code, description)
		if err != nil {
			break
		}
		code = postprocess.SanitizeMermaid(repaired)
	}
	return code
}

func chatRepair(ctx context.Context, client llm.Client, code, description string) (string, error) {
	prompt := "This Mermaid diagram for \"" + description + "\" failed validation:\n" + code +
		"\nFix it so it declares a chart type and balances subgraph/end. Respond with only the corrected source."
	return client.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, llm.ChatOptions{Caller: "artist:repair"})
}

var asciiFlowchartWeak = regexp.MustCompile(`(?m)^\s*[+\-|]{3,}.*[+\-|]{3,}\s*$`)
var asciiFlowchartStrong = regexp.MustCompile(`(?m)^\s*\+-+\+\s*$`)
var codeFence = regexp.MustCompile("(?s)```.*?```")
var mdTableRow = regexp.MustCompile(`(?m)^\s*\|.*\|\s*$`)

// replaceASCIIFlowcharts detects ASCII-art flowcharts (excluding fenced code
// and Markdown tables) and replaces them with an IMAGE placeholder (spec.md
// §4.5.7 mini-section mode).
func (a *Artist) replaceASCIIFlowcharts(content string) string {
	fenced := codeFence.FindAllStringIndex(content, -1)
	inFence := func(start int) bool {
		for _, f := range fenced {
			if start >= f[0] && start < f[1] {
				return true
			}
		}
		return false
	}

	lines := strings.Split(content, "\n")
	offset := 0
	var out []string
	replaced := false
	for _, line := range lines {
		start := offset
		offset += len(line) + 1
		if !replaced && !inFence(start) && !mdTableRow.MatchString(line) &&
			(asciiFlowchartStrong.MatchString(line) || asciiFlowchartWeak.MatchString(line)) {
			out = append(out, "[IMAGE: flowchart - "+truncate(strings.TrimSpace(line), 80)+"]")
			replaced = true
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func topicSuffix(topic string) string {
	if topic == "" {
		return ""
	}
	return " on \"" + topic + "\""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// budget resolves the full-mode image cap: an explicit override if set,
// otherwise the target-length-derived default (spec.md §4.5.7
// "mini=3, short=5, medium=8, long=12").
func (a *Artist) budget(length state.TargetLength) int {
	if a.ImageBudget > 0 {
		return a.ImageBudget
	}
	return length.ImageBudget()
}
