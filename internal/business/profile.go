// Package business defines the per-business configuration records consumed by
// the conversation engine: display branding, copy templates for every step of
// the dialogue, and the ordered list of intake fields collected before a
// booking is committed. Profiles are immutable at runtime; they are loaded
// once at startup from built-in defaults plus an optional JSON file.
package business

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Brand carries the widget color scheme for a business.
type Brand struct {
	Primary string `json:"primary"`
	Accent  string `json:"accent"`
}

// IntakeField is one piece of information collected after a slot is chosen.
// Fields are collected in profile order. An optional field accepts the
// literal token "skip" (case-insensitive) and stores an empty value.
//
// Well-known keys: "name" and "phone" map to dedicated appointment columns;
// any other key (reason, notes, property, ...) is stored in the notes column.
type IntakeField struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Prompt   string `json:"prompt"`
	Required bool   `json:"required"`
}

// Copy holds the user-facing message templates for one business. The
// PickTime and Confirm templates support {date}, {time} and {name}
// placeholders, substituted by the Render helpers.
type Copy struct {
	Greeting         string `json:"greeting"`
	Intro            string `json:"intro"`
	Fallback         string `json:"fallback"`
	PickDate         string `json:"pick_date"`
	PickDateNoTimes  string `json:"pick_date_no_times"`
	InvalidDate      string `json:"invalid_date"`
	InvalidTime      string `json:"invalid_time"`
	PickTime         string `json:"pick_time"`
	Confirm          string `json:"confirm"`
	SlotTaken        string `json:"slot_taken"`
	Retry            string `json:"retry"`
	ChooseDateFirst  string `json:"choose_date_first"`
	AlreadyConfirmed string `json:"already_confirmed"`
	UnknownNext      string `json:"unknown_next"`
	ResetAck         string `json:"reset_ack"`
}

// RenderPickTime substitutes the selected date into the pick-time template.
func (c Copy) RenderPickTime(date string) string {
	return strings.NewReplacer("{date}", date).Replace(c.PickTime)
}

// RenderConfirm substitutes the booked name, date, and time into the
// confirmation template.
func (c Copy) RenderConfirm(name, date, t string) string {
	return strings.NewReplacer("{name}", name, "{date}", date, "{time}", t).Replace(c.Confirm)
}

// Profile is the immutable configuration record for one business.
type Profile struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Industry string        `json:"industry"`
	Brand    Brand         `json:"brand"`
	Copy     Copy          `json:"copy"`
	Intake   []IntakeField `json:"intake"`
}

// IntakeField returns the configured field with the given key, if any.
func (p Profile) IntakeField(key string) (IntakeField, bool) {
	for _, f := range p.Intake {
		if f.Key == key {
			return f, true
		}
	}
	return IntakeField{}, false
}

// NextIntakeKey returns the key of the intake field following key, or "" when
// key is the last field. An empty key returns the first field.
func (p Profile) NextIntakeKey(key string) string {
	if key == "" {
		if len(p.Intake) == 0 {
			return ""
		}
		return p.Intake[0].Key
	}
	for i, f := range p.Intake {
		if f.Key == key && i+1 < len(p.Intake) {
			return p.Intake[i+1].Key
		}
	}
	return ""
}

// Registry resolves business ids to profiles, falling back to a configured
// default for absent or unrecognized ids.
type Registry struct {
	profiles  map[string]Profile
	defaultID string
}

// NewRegistry builds a registry over the built-in profiles, optionally merged
// with profiles from a JSON file (a map of id -> profile; file entries
// replace built-ins with the same id). defaultID must resolve after merging.
func NewRegistry(path, defaultID string) (*Registry, error) {
	profiles := make(map[string]Profile, len(builtins))
	for id, p := range builtins {
		profiles[id] = p
	}

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read business profiles: %w", err)
		}
		var loaded map[string]Profile
		if err := json.Unmarshal(raw, &loaded); err != nil {
			return nil, fmt.Errorf("parse business profiles: %w", err)
		}
		for id, p := range loaded {
			if p.ID == "" {
				p.ID = id
			}
			profiles[id] = p
		}
	}

	if _, ok := profiles[defaultID]; !ok {
		return nil, fmt.Errorf("default business %q is not defined", defaultID)
	}
	return &Registry{profiles: profiles, defaultID: defaultID}, nil
}

// Get returns the profile for id, or the default profile when id is empty or
// unknown. Unknown ids are not an error: a widget with a stale business id
// still gets a working assistant.
func (r *Registry) Get(id string) Profile {
	if p, ok := r.profiles[id]; ok {
		return p
	}
	return r.profiles[r.defaultID]
}

// Has reports whether id resolves to a configured profile.
func (r *Registry) Has(id string) bool {
	_, ok := r.profiles[id]
	return ok
}

// DefaultID returns the fallback business id.
func (r *Registry) DefaultID() string { return r.defaultID }

// builtins are the stock profiles shipped with the server. A deployment can
// override or extend them via BUSINESSES_PATH.
var builtins = map[string]Profile{
	"gp": {
		ID:       "gp",
		Name:     "Lower Friars Walk Medical Centre",
		Industry: "healthcare",
		Brand:    Brand{Primary: "#0d6efd", Accent: "#198754"},
		Copy: Copy{
			Greeting:         "Hi — I can help you book an appointment. What’s the issue?",
			Intro:            "Welcome to Lower Friars Walk Medical Centre.\n\nTo book an appointment, please type:\n“I need to see a doctor”",
			Fallback:         "I can help you book a GP appointment. Say something like “I need to see a doctor”.",
			PickDate:         "When would you like to come in? Choose a date:",
			PickDateNoTimes:  "No times left for that date — please choose another date:",
			InvalidDate:      "That date isn’t available — please pick one of the date options (or type today/tomorrow).",
			InvalidTime:      "That time isn’t available — please pick one of the time options.",
			PickTime:         "Times available on {date}:",
			Confirm:          "Appointment confirmed for {name} on {date} at {time} ✅",
			SlotTaken:        "Sorry — that slot was just booked. Please pick another time.",
			Retry:            "Something went wrong saving your booking. Please try again.",
			ChooseDateFirst:  "Please choose a date first.",
			AlreadyConfirmed: "Your appointment is already confirmed. Type reset to start again.",
			UnknownNext:      "I’m not sure what to do next — type reset to start again.",
			ResetAck:         "Conversation reset. How can I help you?",
		},
		Intake: []IntakeField{
			{Key: "name", Label: "Your name", Prompt: "Great — what name should I put on the appointment?", Required: true},
			{Key: "reason", Label: "Brief reason", Prompt: "Thanks. Briefly, what’s the reason for the visit? (e.g. cough, earache, medication review)", Required: true},
			{Key: "phone", Label: "Phone number", Prompt: "Optional: what phone number should we use? (Or type 'skip')", Required: false},
		},
	},
	"fitness": {
		ID:       "fitness",
		Name:     "Orla Fitness Cork",
		Industry: "fitness",
		Brand:    Brand{Primary: "#111827", Accent: "#f59e0b"},
		Copy: Copy{
			Greeting:         "Hi! I'm Orla's virtual assistant. Can I book you in for a fitness session?",
			Intro:            "Welcome to Orla Fitness Cork.\n\nTo book a session, say something like:\n“Book a PT session tomorrow”",
			Fallback:         "Say something like “Book a PT session tomorrow”.",
			PickDate:         "Choose a date for your session:",
			PickDateNoTimes:  "No times left for that date — please choose another date:",
			InvalidDate:      "That date isn’t available — please pick one of the date options (or type today/tomorrow).",
			InvalidTime:      "That time isn’t available — please pick one of the time options.",
			PickTime:         "Available times on {date}:",
			Confirm:          "Session confirmed ✅ {date} at {time}. See you then, {name}!",
			SlotTaken:        "Sorry — that slot was just booked. Please pick another time.",
			Retry:            "Something went wrong saving your booking. Please try again.",
			ChooseDateFirst:  "Please choose a date first.",
			AlreadyConfirmed: "Your session is already confirmed. Type reset to start again.",
			UnknownNext:      "I’m not sure what to do next — type reset to start again.",
			ResetAck:         "Conversation reset. How can I help you?",
		},
		Intake: []IntakeField{
			{Key: "name", Label: "Your name", Prompt: "Great — what name should I put on the session?", Required: true},
			{Key: "notes", Label: "Goal / notes", Prompt: "Thanks. What type of session would you like? (e.g. core, upper body, legs, stretch, meditation)", Required: true},
			{Key: "phone", Label: "Phone number", Prompt: "Optional: what phone number should we use? (Or type 'skip')", Required: false},
		},
	},
	"estate": {
		ID:       "estate",
		Name:     "REA O'Donoghue Clarke",
		Industry: "real_estate",
		Brand:    Brand{Primary: "#7c3aed", Accent: "#0ea5e9"},
		Copy: Copy{
			Greeting:         "Hi — I'm Steve's virtual assistant. I can book you in for a viewing or valuation. What do you need?",
			Intro:            "Welcome to REA O'Donoghue Clarke.\n\nTo book a viewing or valuation, say:\n“Book an appointment”",
			Fallback:         "Say “Book an appointment”.",
			PickDate:         "Choose a date:",
			PickDateNoTimes:  "No times left for that date — please choose another date:",
			InvalidDate:      "That date isn’t available — please pick one of the date options (or type today/tomorrow).",
			InvalidTime:      "That time isn’t available — please pick one of the time options.",
			PickTime:         "Viewing times on {date}:",
			Confirm:          "Appointment confirmed ✅ {date} at {time}. See you then, {name}!",
			SlotTaken:        "Sorry — that slot was just booked. Please pick another time.",
			Retry:            "Something went wrong saving your booking. Please try again.",
			ChooseDateFirst:  "Please choose a date first.",
			AlreadyConfirmed: "Your appointment is already confirmed. Type reset to start again.",
			UnknownNext:      "I’m not sure what to do next — type reset to start again.",
			ResetAck:         "Conversation reset. How can I help you?",
		},
		Intake: []IntakeField{
			{Key: "name", Label: "Your name", Prompt: "Great — what name should I put on the appointment?", Required: true},
			{Key: "property", Label: "Property / area", Prompt: "Thanks. What type of appointment would you like? (e.g. valuation, viewing, selling/buying a property)", Required: true},
			{Key: "phone", Label: "Phone number", Prompt: "Optional: what phone number should we use? (Or type 'skip')", Required: false},
		},
	},
}
