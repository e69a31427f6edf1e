package activity

import (
	"time"

	"github.com/sethgrid/pelioscope/internal/emotion"
)

type Track struct {
	Title string
	Mood  emotion.Emotion
	URL   string
}

var Tracks = []Track{
	{Title: "Ocean Calm", Mood: emotion.Relaxed, URL: "https://assets.mixkit.co/active_storage/sfx/1196/1196-preview.mp3"},
	{Title: "Forest Rain", Mood: emotion.Peaceful, URL: "https://assets.mixkit.co/active_storage/sfx/2393/2393-preview.mp3"},
	{Title: "Soft Clouds", Mood: emotion.Focus, URL: "https://assets.mixkit.co/active_storage/sfx/1175/1175-preview.mp3"},
	{Title: "Nature Sounds", Mood: emotion.Calm, URL: "https://assets.mixkit.co/active_storage/sfx/2434/2434-preview.mp3"},
	{Title: "Bird Sounds", Mood: emotion.Happy, URL: "https://assets.mixkit.co/active_storage/sfx/2472/2472-preview.mp3"},
}

type MusicView struct {
	Track    int
	Playing  bool
	Listened time.Duration
	Goal     time.Duration
}

// Music is the ambient player. Listening time accumulates only while a
// track plays, and the session completes once it reaches the activity's
// nominal duration.
type Music struct {
	s        *Session
	track    int
	playing  bool
	listened time.Duration
	tick     *handle
}

func (m *Music) begin() {}

func (m *Music) Toggle() {
	m.s.do(func() {
		if m.playing {
			m.pause()
			return
		}
		m.resume()
	})
}

func (m *Music) Next() { m.Select(m.current() + 1) }
func (m *Music) Prev() { m.Select(m.current() - 1) }

// Select switches to track i, wrapping around, and starts playing.
func (m *Music) Select(i int) {
	m.s.do(func() {
		n := len(Tracks)
		m.track = ((i % n) + n) % n
		m.s.say("Now playing: " + Tracks[m.track].Title)
		m.resume()
	})
}

func (m *Music) View() MusicView {
	var v MusicView
	m.s.view(func() {
		v = MusicView{Track: m.track, Playing: m.playing, Listened: m.listened, Goal: m.s.spec.Duration}
	})
	return v
}

func (m *Music) current() int {
	var i int
	m.s.view(func() { i = m.track })
	return i
}

func (m *Music) resume() {
	if m.playing {
		return
	}
	m.playing = true
	m.tick = m.s.every(time.Second, func() {
		m.listened += time.Second
		if m.listened >= m.s.spec.Duration {
			m.s.complete()
		}
	})
}

func (m *Music) pause() {
	m.playing = false
	m.s.stop(m.tick)
	m.tick = nil
}
