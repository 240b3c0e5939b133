package assistant

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	text  string
	err   error
	calls []Request
	// wait blocks Generate until the context is done.
	wait bool
}

func (f *fakeGenerator) Generate(ctx context.Context, req Request) (Response, error) {
	f.calls = append(f.calls, req)
	if f.wait {
		<-ctx.Done()
		return Response{}, ctx.Err()
	}
	return Response{Text: f.text}, f.err
}

func newTestService(gen Generator, opts ...Option) *Service {
	opts = append(opts, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	return NewService(gen, opts...)
}

func TestAskUsesAudienceInstruction(t *testing.T) {
	gen := &fakeGenerator{text: "  الإنسولين مثل المفتاح 🔑 "}
	s := newTestService(gen)

	answer, err := s.Ask(context.Background(), Kids, "ما هو الإنسولين؟")
	require.NoError(t, err)
	assert.Equal(t, "الإنسولين مثل المفتاح 🔑", answer)

	_, err = s.Ask(context.Background(), Parents, "كيف أتعامل مع الهبوط؟")
	require.NoError(t, err)

	require.Len(t, gen.calls, 2)
	assert.Equal(t, kidsInstruction, gen.calls[0].Instruction)
	assert.Equal(t, parentsInstruction, gen.calls[1].Instruction)
	assert.Equal(t, DefaultModel, gen.calls[0].Model)
	assert.Nil(t, gen.calls[0].Schema)
}

func TestAskValidation(t *testing.T) {
	gen := &fakeGenerator{text: "ok"}
	s := newTestService(gen)

	_, err := s.Ask(context.Background(), Kids, "   ")
	assert.ErrorIs(t, err, ErrEmptyQuestion)
	_, err = s.Ask(context.Background(), "teachers", "hi")
	assert.ErrorIs(t, err, ErrUnknownAudience)
	assert.Empty(t, gen.calls)
}

func TestFailuresAreUnavailable(t *testing.T) {
	cases := map[string]*Service{
		"generator error": newTestService(&fakeGenerator{err: errors.New("quota")}),
		"empty text":      newTestService(&fakeGenerator{text: "  "}),
		"no generator":    newTestService(nil),
	}
	for name, s := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := s.Ask(context.Background(), Kids, "hello")
			assert.ErrorIs(t, err, ErrUnavailable)
		})
	}
}

func TestNoRetry(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("boom")}
	s := newTestService(gen)
	s.Ask(context.Background(), Kids, "hello")
	assert.Len(t, gen.calls, 1)
}

func TestTimeout(t *testing.T) {
	gen := &fakeGenerator{wait: true}
	s := newTestService(gen, WithTimeout(10*time.Millisecond))

	_, err := s.Ask(context.Background(), Kids, "hello")
	require.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWithModel(t *testing.T) {
	gen := &fakeGenerator{text: "ok"}
	s := newTestService(gen, WithModel("gemini-2.5-pro"), WithModel(""))
	s.Ask(context.Background(), Kids, "hello")
	assert.Equal(t, "gemini-2.5-pro", gen.calls[0].Model)
	assert.True(t, s.Enabled())
	assert.False(t, newTestService(nil).Enabled())
}

func TestCarbs(t *testing.T) {
	gen := &fakeGenerator{text: `{"food_name":"تفاحة","serving_size":"1 حبة متوسطة","carbohydrates":"25 جرام","found":true}`}
	s := newTestService(gen)

	info, err := s.Carbs(context.Background(), "تفاحة")
	require.NoError(t, err)
	assert.Equal(t, CarbInfo{FoodName: "تفاحة", ServingSize: "1 حبة متوسطة", Carbohydrates: "25 جرام", Found: true}, info)
	assert.Same(t, CarbSchema, gen.calls[0].Schema)
	assert.Equal(t, carbsInstruction, gen.calls[0].Instruction)
}

func TestCarbsFencedJSON(t *testing.T) {
	gen := &fakeGenerator{text: "```json\n{\"food_name\":\"rice\",\"serving_size\":\"1 cup\",\"carbohydrates\":\"45g\",\"found\":true}\n```"}
	info, err := newTestService(gen).Carbs(context.Background(), "rice")
	require.NoError(t, err)
	assert.Equal(t, "45g", info.Carbohydrates)
}

func TestCarbsNotFound(t *testing.T) {
	gen := &fakeGenerator{text: `{"food_name":"طعام غير معروف","serving_size":"","carbohydrates":"","found":false}`}
	info, err := newTestService(gen).Carbs(context.Background(), "xyzzy")
	require.ErrorIs(t, err, ErrFoodNotFound)
	assert.False(t, errors.Is(err, ErrUnavailable))
	assert.Equal(t, "طعام غير معروف", info.FoodName)
}

func TestCarbsMalformed(t *testing.T) {
	gen := &fakeGenerator{text: `not json`}
	_, err := newTestService(gen).Carbs(context.Background(), "rice")
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = newTestService(gen).Carbs(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyQuestion)
}

func TestNewGenAIRequiresKey(t *testing.T) {
	_, err := NewGenAI(context.Background(), "")
	assert.Error(t, err)
}
