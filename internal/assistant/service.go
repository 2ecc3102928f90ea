// Package assistant is the direct-reply LLM bot variant: chat and
// vision answers with per-day quotas, a rolling history and promo
// codes that grant a premium plan. All of its state is ephemeral and
// lives in Redis.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"anonchat/backend/internal/llm"
	"anonchat/backend/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrQuotaExceeded rejects a request past the plan's daily allowance.
var ErrQuotaExceeded = errors.New("daily quota exceeded")

// ErrInvalidPromo rejects an unknown or already redeemed promo code.
var ErrInvalidPromo = errors.New("invalid promo code")

// Plan is a daily allowance.
type Plan struct {
	Name         string
	TextPerDay   int
	ImagesPerDay int
}

var (
	FreePlan    = Plan{Name: "free", TextPerDay: 10, ImagesPerDay: 2}
	PremiumPlan = Plan{Name: "premium", TextPerDay: 90, ImagesPerDay: 15}
)

// maxHistory is the number of stored turns (user and assistant lines
// both count) sent back to the model as context.
const maxHistory = 20

const systemPrompt = "You are a friendly, concise assistant inside a Telegram bot. " +
	"Answer in the language the user writes in."

type Service struct {
	rdb     *redis.Client
	llm     *llm.Client
	log     *zap.Logger
	ownerID int64

	textModel   string
	visionModel string
}

func NewService(rdb *redis.Client, client *llm.Client, log *zap.Logger, ownerID int64, textModel, visionModel string) *Service {
	return &Service{
		rdb:         rdb,
		llm:         client,
		log:         log,
		ownerID:     ownerID,
		textModel:   textModel,
		visionModel: visionModel,
	}
}

// Ask answers a text prompt with the rolling history as context.
func (s *Service) Ask(ctx context.Context, uid int64, text string) (string, error) {
	plan, err := s.PlanFor(ctx, uid)
	if err != nil {
		return "", err
	}
	if err := s.consume(ctx, uid, "text", plan.TextPerDay); err != nil {
		return "", err
	}

	history, err := s.history(ctx, uid)
	if err != nil {
		return "", err
	}
	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.TextMessage("system", systemPrompt))
	messages = append(messages, history...)
	messages = append(messages, llm.TextMessage("user", text))

	answer, err := s.llm.Chat(ctx, s.textModel, messages)
	if err != nil {
		return "", err
	}
	s.appendHistory(ctx, uid,
		llm.TextMessage("user", text),
		llm.TextMessage("assistant", answer))
	return answer, nil
}

// Describe answers a vision prompt. The image arrives as a data URL;
// vision calls are single shot and do not enter the history.
func (s *Service) Describe(ctx context.Context, uid int64, caption, dataURL string) (string, error) {
	plan, err := s.PlanFor(ctx, uid)
	if err != nil {
		return "", err
	}
	if err := s.consume(ctx, uid, "image", plan.ImagesPerDay); err != nil {
		return "", err
	}

	if caption == "" {
		caption = "Describe this image."
	}
	answer, err := s.llm.Chat(ctx, s.visionModel, []llm.Message{
		llm.VisionMessage(caption, dataURL),
	})
	if err != nil {
		return "", err
	}
	return answer, nil
}

// Reset drops the rolling history.
func (s *Service) Reset(ctx context.Context, uid int64) error {
	return s.rdb.Del(ctx, historyKey(uid)).Err()
}

// GeneratePromo mints a one-shot promo code worth the given number of
// premium days. Owner only.
func (s *Service) GeneratePromo(ctx context.Context, callerUID int64, days int) (string, error) {
	if callerUID != s.ownerID || s.ownerID == 0 {
		return "", models.ErrForbidden
	}
	code := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	// Unredeemed codes expire on their own after a month.
	if err := s.rdb.Set(ctx, promoKey(code), days, 30*24*time.Hour).Err(); err != nil {
		return "", err
	}
	s.log.Info("promo code minted", zap.Int("days", days))
	return code, nil
}

// Redeem trades a promo code for premium days. Each code works once.
func (s *Service) Redeem(ctx context.Context, uid int64, code string) (int, error) {
	days, err := s.rdb.GetDel(ctx, promoKey(strings.ToUpper(strings.TrimSpace(code)))).Int()
	if errors.Is(err, redis.Nil) {
		return 0, ErrInvalidPromo
	}
	if err != nil {
		return 0, err
	}
	if err := s.rdb.Set(ctx, premiumKey(uid), 1, time.Duration(days)*24*time.Hour).Err(); err != nil {
		return 0, err
	}
	s.log.Info("promo redeemed", zap.Int64("user", uid), zap.Int("days", days))
	return days, nil
}

// PlanFor resolves the caller's current plan.
func (s *Service) PlanFor(ctx context.Context, uid int64) (Plan, error) {
	n, err := s.rdb.Exists(ctx, premiumKey(uid)).Result()
	if err != nil {
		return Plan{}, err
	}
	if n > 0 {
		return PremiumPlan, nil
	}
	return FreePlan, nil
}

// Usage reports today's consumption against the plan.
func (s *Service) Usage(ctx context.Context, uid int64) (textUsed, imagesUsed int, plan Plan, err error) {
	plan, err = s.PlanFor(ctx, uid)
	if err != nil {
		return 0, 0, Plan{}, err
	}
	textUsed, _ = s.rdb.Get(ctx, quotaKey(uid, "text")).Int()
	imagesUsed, _ = s.rdb.Get(ctx, quotaKey(uid, "image")).Int()
	return textUsed, imagesUsed, plan, nil
}

// consume counts one unit against the daily allowance. The counter key
// carries the date, the TTL only garbage-collects it.
func (s *Service) consume(ctx context.Context, uid int64, kind string, limit int) error {
	key := quotaKey(uid, kind)
	used, err := s.rdb.Incr(ctx, key).Result()
	if err != nil {
		return err
	}
	if used == 1 {
		s.rdb.Expire(ctx, key, 48*time.Hour)
	}
	if used > int64(limit) {
		return ErrQuotaExceeded
	}
	return nil
}

func (s *Service) history(ctx context.Context, uid int64) ([]llm.Message, error) {
	raw, err := s.rdb.LRange(ctx, historyKey(uid), 0, -1).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}
	messages := make([]llm.Message, 0, len(raw))
	for _, item := range raw {
		role, content, ok := strings.Cut(item, "\x00")
		if !ok {
			continue
		}
		messages = append(messages, llm.TextMessage(role, content))
	}
	return messages, nil
}

func (s *Service) appendHistory(ctx context.Context, uid int64, turns ...llm.Message) {
	key := historyKey(uid)
	for _, t := range turns {
		content, _ := t.Content.(string)
		s.rdb.RPush(ctx, key, t.Role+"\x00"+content)
	}
	s.rdb.LTrim(ctx, key, -maxHistory, -1)
	s.rdb.Expire(ctx, key, 7*24*time.Hour)
}

func historyKey(uid int64) string { return fmt.Sprintf("assistant:hist:%d", uid) }

func premiumKey(uid int64) string { return fmt.Sprintf("assistant:premium:%d", uid) }

func promoKey(code string) string { return "assistant:promo:" + code }

func quotaKey(uid int64, kind string) string {
	return fmt.Sprintf("assistant:quota:%s:%d:%s",
		kind, uid, time.Now().UTC().Format("2006-01-02"))
}
