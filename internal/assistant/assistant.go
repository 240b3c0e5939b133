// Package assistant answers diabetes questions for kids and parents and looks
// up carbohydrate content, using a Gemini model behind the Generator interface.
package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

var (
	// ErrUnavailable wraps every failure to get a usable answer from the model.
	ErrUnavailable = errors.New("assistant unavailable")
	// ErrFoodNotFound means the model did not recognize the food.
	ErrFoodNotFound = errors.New("food not found")
)

// ErrEmptyQuestion is returned when Ask gets a blank question.
var ErrEmptyQuestion = errors.New("question is required")

// ErrUnknownAudience is returned for an audience other than kids or parents.
var ErrUnknownAudience = errors.New("unknown audience")

// Audience selects the assistant persona.
type Audience string

const (
	Kids    Audience = "kids"
	Parents Audience = "parents"
)

// Request is a single generation call.
type Request struct {
	Model       string
	Instruction string
	Text        string
	// Schema, when set, asks for a JSON response matching it.
	Schema *genai.Schema
}

// Response is the model's text output.
type Response struct {
	Text string
}

// Generator produces text for a request.
type Generator interface {
	Generate(ctx context.Context, req Request) (Response, error)
}

const kidsInstruction = `أنت مساعد ذكي ولطيف اسمه "إنسولينو" على شكل قلم إنسولين كرتوني.
أنت تتحدث إلى طفل صغير مصاب بالسكري.
استخدم لغة بسيطة جدًا ومشجعة وإيجابية.
استخدم الكثير من الرموز التعبيرية (emojis).
اجعل إجاباتك قصيرة ومباشرة ومفهومة لطفل عمره 5-10 سنوات.
أجب دائمًا باللغة العربية.
لا تقدم نصائح طبية، بل اشرح المفاهيم ببساطة.`

const parentsInstruction = `أنت مساعد ذكي متخصص في تقديم الدعم لأولياء أمور الأطفال المصابين بالسكري.
قدم إجابات واضحة ومبسطة وعملية. ركز على النصائح العامة والآمنة.
لا تقدم تشخيصًا طبيًا أو وصفات علاجية.
دائمًا، وفي نهاية كل إجابة، شدد على أهمية استشارة الطبيب المختص قبل اتخاذ أي إجراء.
يجب أن تكون إجاباتك باللغة العربية.`

const carbsInstruction = `You are a nutritional assistant for a diabetes management app for children and parents. ` +
	`Your goal is to provide carbohydrate information for various foods in Arabic. ` +
	`When a user provides a food name, you must return the estimated carbohydrate content for a common serving size (like 100g or 1 cup). ` +
	`Respond ONLY with a JSON object following the provided schema. ` +
	`If the food is not found or is ambiguous, set 'found' to false and provide a helpful food_name like 'طعام غير معروف'.`

// CarbSchema is the structured output requested for carb lookups.
var CarbSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"food_name":     {Type: genai.TypeString},
		"serving_size":  {Type: genai.TypeString},
		"carbohydrates": {Type: genai.TypeString},
		"found":         {Type: genai.TypeBoolean},
	},
	Required: []string{"food_name", "serving_size", "carbohydrates", "found"},
}

// CarbInfo is the result of a carb lookup.
type CarbInfo struct {
	FoodName      string `json:"food_name"`
	ServingSize   string `json:"serving_size"`
	Carbohydrates string `json:"carbohydrates"`
	Found         bool   `json:"found"`
}

// Service wraps a Generator with the app's prompts.
type Service struct {
	gen     Generator
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithModel overrides the default model. Empty keeps the default.
func WithModel(model string) Option {
	return func(s *Service) {
		if model != "" {
			s.model = model
		}
	}
}

// WithTimeout bounds each call. Zero means no extra deadline.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

// WithLogger sets the logger for model calls.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// NewService creates a Service. A nil gen makes every call fail with
// ErrUnavailable.
func NewService(gen Generator, opts ...Option) *Service {
	s := &Service{gen: gen, model: DefaultModel}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Enabled reports whether a generator is configured.
func (s *Service) Enabled() bool {
	return s.gen != nil
}

func (s *Service) generate(ctx context.Context, req Request) (string, error) {
	if s.gen == nil {
		return "", fmt.Errorf("%w: no generator configured", ErrUnavailable)
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	req.Model = s.model

	start := time.Now()
	resp, err := s.gen.Generate(ctx, req)
	if err != nil {
		s.logger.Warn("assistant call failed", "model", req.Model, "err", err, "duration", time.Since(start))
		return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", fmt.Errorf("%w: empty response", ErrUnavailable)
	}
	s.logger.Debug("assistant call", "model", req.Model, "duration", time.Since(start))
	return text, nil
}

// Ask answers a free-form question for the given audience.
func (s *Service) Ask(ctx context.Context, audience Audience, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyQuestion
	}
	var instruction string
	switch audience {
	case Kids, "":
		instruction = kidsInstruction
	case Parents:
		instruction = parentsInstruction
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAudience, audience)
	}
	return s.generate(ctx, Request{Instruction: instruction, Text: question})
}

// Carbs looks up the carbohydrate content of food.
func (s *Service) Carbs(ctx context.Context, food string) (CarbInfo, error) {
	food = strings.TrimSpace(food)
	if food == "" {
		return CarbInfo{}, ErrEmptyQuestion
	}
	text, err := s.generate(ctx, Request{Instruction: carbsInstruction, Text: food, Schema: CarbSchema})
	if err != nil {
		return CarbInfo{}, err
	}

	var info CarbInfo
	if err := json.Unmarshal([]byte(stripFence(text)), &info); err != nil {
		return CarbInfo{}, fmt.Errorf("%w: decode carb info: %w", ErrUnavailable, err)
	}
	if !info.Found {
		return info, fmt.Errorf("%w: %q", ErrFoodNotFound, food)
	}
	return info, nil
}

// stripFence removes a surrounding ```json fence some models add even in
// JSON mode.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
