package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hasibx0/ai-blogger-bot/internal/collect"
	"github.com/hasibx0/ai-blogger-bot/internal/compose"
	"github.com/hasibx0/ai-blogger-bot/internal/deliver"
	"github.com/hasibx0/ai-blogger-bot/internal/images"
	"github.com/hasibx0/ai-blogger-bot/internal/notify"
)

// Topics picks the topic of a run.
type Topics interface {
	Pick() string
}

// Gatherer collects context snippets for a topic.
type Gatherer interface {
	Gather(ctx context.Context, topic string) []collect.Snippet
}

// Generator writes the article. It never fails.
type Generator interface {
	Generate(ctx context.Context, topic, contextBlob string) string
}

// StepResult holds the result of a single pipeline step.
type StepResult struct {
	Name    string
	Summary string
	Err     error
}

// Result holds the results of a full pipeline run.
type Result struct {
	Topic        string
	Subject      string
	Post         compose.Post
	Confirmation *deliver.Confirmation
	Steps        []StepResult
}

// Components are the collaborators of a Pipeline. Delivery and Notifier
// may be nil when the pipeline is only used to prepare posts.
type Components struct {
	Topics    Topics
	Gatherer  Gatherer
	Generator Generator
	Images    images.Lookup
	Assembler *compose.Assembler
	Delivery  deliver.Adapter
	Notifier  notify.Notifier
}

// Pipeline runs the steps gather -> generate -> image -> assemble ->
// deliver -> notify strictly in order.
type Pipeline struct {
	c      Components
	logger *slog.Logger
	now    func() time.Time
}

// ErrNoDelivery is returned by Run when no delivery adapter is configured.
var ErrNoDelivery = errors.New("no delivery adapter configured")

// New creates a new pipeline.
func New(c Components, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if c.Images == nil {
		c.Images = images.Disabled{}
	}
	if c.Assembler == nil {
		c.Assembler = compose.NewAssembler(compose.Plain)
	}
	return &Pipeline{c: c, logger: logger, now: time.Now}
}

// Run prepares a post and delivers it. Only a delivery failure is returned
// as an error; every earlier step degrades instead of failing.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	if p.c.Delivery == nil {
		return nil, ErrNoDelivery
	}

	r := p.Prepare(ctx)

	step, conf := p.runDeliver(ctx, r.Post)
	r.Steps = append(r.Steps, step)
	if step.Err != nil {
		return r, step.Err
	}
	r.Confirmation = conf

	r.Steps = append(r.Steps, p.runNotify(ctx, r.Post, conf))
	return r, nil
}

// Prepare runs every step up to and including assembly. It is the dry-run
// form of Run.
func (p *Pipeline) Prepare(ctx context.Context) *Result {
	topic := p.c.Topics.Pick()
	p.logger.Info("selected topic", "topic", topic)

	r := &Result{
		Topic:   topic,
		Subject: deliver.Subject(topic, p.now()),
	}

	step, snippets := p.runGather(ctx, topic)
	r.Steps = append(r.Steps, step)

	step, article := p.runGenerate(ctx, topic, collect.FormatContext(snippets))
	r.Steps = append(r.Steps, step)

	step, imageURL := p.runImage(ctx, topic)
	r.Steps = append(r.Steps, step)

	step, post := p.runAssemble(topic, article, imageURL)
	r.Steps = append(r.Steps, step)
	r.Post = post

	return r
}

func (p *Pipeline) runGather(ctx context.Context, topic string) (StepResult, []collect.Snippet) {
	p.logger.Info("Step 1/6: gathering context")
	snippets := p.c.Gatherer.Gather(ctx, topic)
	return StepResult{
		Name:    "Gather",
		Summary: fmt.Sprintf("Collected %d context snippets", len(snippets)),
	}, snippets
}

func (p *Pipeline) runGenerate(ctx context.Context, topic, contextBlob string) (StepResult, string) {
	p.logger.Info("Step 2/6: generating article")
	article := p.c.Generator.Generate(ctx, topic, contextBlob)
	p.logger.Debug("generated article", "preview", preview(article, 200))
	return StepResult{
		Name:    "Generate",
		Summary: fmt.Sprintf("Generated %d characters", len([]rune(article))),
	}, article
}

func (p *Pipeline) runImage(ctx context.Context, topic string) (StepResult, string) {
	p.logger.Info("Step 3/6: looking up image")
	url := p.c.Images.Lookup(ctx, topic)
	summary := "No image"
	if url != "" {
		summary = "Image: " + url
	}
	return StepResult{Name: "Image", Summary: summary}, url
}

func (p *Pipeline) runAssemble(topic, article, imageURL string) (StepResult, compose.Post) {
	p.logger.Info("Step 4/6: assembling post", "mode", p.c.Assembler.Mode)
	post := p.c.Assembler.Assemble(topic, article, imageURL)
	return StepResult{
		Name:    "Assemble",
		Summary: fmt.Sprintf("Assembled %d bytes of HTML", len(post.HTML)),
	}, post
}

func (p *Pipeline) runDeliver(ctx context.Context, post compose.Post) (StepResult, *deliver.Confirmation) {
	p.logger.Info("Step 5/6: delivering post", "method", p.c.Delivery.Method())
	conf, err := p.c.Delivery.Deliver(ctx, post)
	if err != nil {
		return StepResult{Name: "Deliver", Err: err}, nil
	}
	summary := conf.Detail
	if conf.URL != "" {
		summary = "Published at " + conf.URL
	}
	return StepResult{Name: "Deliver", Summary: summary}, conf
}

func (p *Pipeline) runNotify(ctx context.Context, post compose.Post, conf *deliver.Confirmation) StepResult {
	if p.c.Notifier == nil {
		return StepResult{Name: "Notify", Summary: "Notifications disabled"}
	}
	p.logger.Info("Step 6/6: sending notification")

	link := conf.URL
	if link == "" {
		link = conf.Detail
	}
	if err := p.c.Notifier.Notify(ctx, post.Title, link); err != nil {
		p.logger.Warn("notification failed", "error", err)
		return StepResult{Name: "Notify", Err: err}
	}
	return StepResult{Name: "Notify", Summary: "Notification sent"}
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		return string(r[:n])
	}
	return s
}
