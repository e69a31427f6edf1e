package activity

import (
	"fmt"
	"slices"
	"time"

	"github.com/sethgrid/pelioscope/internal/economy"
	"github.com/sethgrid/pelioscope/internal/emotion"
)

const (
	giftDoneDelay    = 3500 * time.Millisecond
	giftRetryMessage = 1500 * time.Millisecond
)

type GiftItem struct {
	ID       string
	Label    string
	Icon     string
	Price    int
	Reaction emotion.Emotion
	Message  string
}

var Gifts = []GiftItem{
	{ID: "star", Label: "Star", Icon: "⭐", Price: 15, Reaction: emotion.Proud, Message: "I feel like a star!"},
	{ID: "hug", Label: "Hug", Icon: "🤗", Price: 0, Reaction: emotion.Love, Message: "I feel so loved!"},
	{ID: "highfive", Label: "High 5", Icon: "✋", Price: 0, Reaction: emotion.Excited, Message: "High five! Yeah!"},
	{ID: "note", Label: "Note", Icon: "💌", Price: 5, Reaction: emotion.Grateful, Message: "Thank you so much!"},
}

// GiftMoods are the feelings offered before choosing a gift.
var GiftMoods = []emotion.Emotion{emotion.Happy, emotion.Sad, emotion.Angry, emotion.Fear, emotion.Surprised, emotion.Neutral}

type GiftView struct {
	Mood     emotion.Emotion
	Display  emotion.Emotion
	Feedback string
	Reacting bool
}

// Gift asks how the user feels and then lets them give the companion one
// gift. Paid gifts are charged in drachma.
type Gift struct {
	s        *Session
	mood     emotion.Emotion
	display  emotion.Emotion
	feedback string
	reacting bool
	reset    *handle
}

func (g *Gift) begin() {
	g.display = emotion.Neutral
	g.feedback = fmt.Sprintf("How is %s feeling?", g.s.deps.UserName)
}

func (g *Gift) ChooseMood(e emotion.Emotion) bool {
	var ok bool
	g.s.do(func() {
		if g.mood != "" || !slices.Contains(GiftMoods, e) {
			return
		}
		ok = true
		g.mood, g.display = e, e
		g.feedback = g.feelingText()
		g.s.say(g.feedback)
	})
	return ok
}

// Give hands over a gift. A paid gift the user cannot afford is refused
// with economy.ErrInsufficientFunds and nothing changes.
func (g *Gift) Give(id string) error {
	var err error
	g.s.do(func() {
		if g.mood == "" || g.reacting {
			return
		}
		i := slices.IndexFunc(Gifts, func(it GiftItem) bool { return it.ID == id })
		if i < 0 {
			err = fmt.Errorf("%w: %s", economy.ErrUnknownItem, id)
			return
		}
		gift := Gifts[i]
		if gift.Price > 0 && (g.s.deps.Ledger == nil || !g.s.deps.Ledger.Spend(gift.Price)) {
			err = economy.ErrInsufficientFunds
			g.feedback = "Need more Drachma!"
			g.s.say(g.feedback)
			g.s.stop(g.reset)
			g.reset = g.s.after(giftRetryMessage, func() {
				g.reset = nil
				g.feedback = g.feelingText()
			})
			return
		}
		g.s.stop(g.reset)
		g.reacting = true
		g.display = gift.Reaction
		g.feedback = gift.Message
		g.s.say(gift.Icon + " " + gift.Message)
		g.s.after(giftDoneDelay, g.s.complete)
	})
	return err
}

func (g *Gift) View() GiftView {
	var v GiftView
	g.s.view(func() {
		v = GiftView{Mood: g.mood, Display: g.display, Feedback: g.feedback, Reacting: g.reacting}
	})
	return v
}

func (g *Gift) feelingText() string {
	return fmt.Sprintf("%s is feeling %s.", g.s.deps.CompanionName, g.mood)
}
