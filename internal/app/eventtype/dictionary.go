package eventtype

import "sort"

type style struct {
	icon    string
	palette palette
}

// dictionary holds the known keywords. Keys are lowercase.
var dictionary = map[string]style{
	// outdoors
	"hiking":         {"⛰️", emerald},
	"trekking":       {"🥾", emerald},
	"mountaineering": {"🏔️", slate},
	"camping":        {"🏕️", teal},
	"trail":          {"🌲", green},
	"picnic":         {"🧺", lime},
	"beach":          {"🏖️", sky},
	"birdwatching":   {"🐦", lime},
	"stargazing":     {"🔭", indigo},
	"gardening":      {"🌱", green},
	"paragliding":    {"🪂", sky},
	"horse riding":   {"🐎", amber},
	"fishing":        {"🎣", cyan},

	// wheels, water and snow
	"cycling":      {"🚵", cyan},
	"biking":       {"🚴", cyan},
	"climbing":     {"🧗", orange},
	"bouldering":   {"🧗", orange},
	"kayaking":     {"🛶", sky},
	"canoeing":     {"🛶", sky},
	"rafting":      {"🚣", sky},
	"surfing":      {"🏄", sky},
	"swimming":     {"🏊", cyan},
	"diving":       {"🤿", blue},
	"snorkeling":   {"🤿", cyan},
	"sailing":      {"⛵", blue},
	"skiing":       {"⛷️", slate},
	"snowboarding": {"🏂", slate},
	"skating":      {"⛸️", indigo},

	// running and fitness
	"running":      {"🏃", green},
	"marathon":     {"🏅", green},
	"jogging":      {"🏃", green},
	"walking":      {"🚶", lime},
	"fitness":      {"💪", red},
	"gym":          {"🏋️", red},
	"crossfit":     {"🏋️", red},
	"yoga":         {"🧘", purple},
	"pilates":      {"🤸", purple},
	"meditation":   {"🕉️", violet},
	"dance":        {"💃", pink},
	"zumba":        {"💃", pink},
	"martial arts": {"🥋", red},
	"boxing":       {"🥊", red},
	"wrestling":    {"🤼", red},

	// team and racket sports
	"sports":       {"🏐", blue},
	"football":     {"⚽", green},
	"soccer":       {"⚽", green},
	"cricket":      {"🏏", lime},
	"basketball":   {"🏀", orange},
	"volleyball":   {"🏐", yellow},
	"tennis":       {"🎾", lime},
	"table tennis": {"🏓", orange},
	"badminton":    {"🏸", teal},
	"golf":         {"⛳", green},
	"baseball":     {"⚾", blue},
	"rugby":        {"🏉", amber},
	"hockey":       {"🏑", blue},
	"chess":        {"♟️", slate},

	// culture
	"concert":     {"🎸", fuchsia},
	"music":       {"🎵", fuchsia},
	"festival":    {"🎭", red},
	"movie":       {"🎬", indigo},
	"theater":     {"🎭", rose},
	"comedy":      {"😂", yellow},
	"karaoke":     {"🎤", pink},
	"art":         {"🎨", rose},
	"painting":    {"🖌️", rose},
	"photography": {"📷", slate},
	"museum":      {"🏛️", amber},
	"book club":   {"📚", amber},
	"reading":     {"📖", amber},
	"poetry":      {"✒️", violet},
	"writing":     {"✍️", violet},

	// food and social
	"food":              {"🍜", orange},
	"cooking":           {"👩‍🍳", orange},
	"baking":            {"🧁", pink},
	"wine":              {"🍷", rose},
	"coffee":            {"☕", amber},
	"brunch":            {"🥞", yellow},
	"dinner":            {"🍽️", orange},
	"party":             {"🎉", fuchsia},
	"meetup":            {"🤝", blue},
	"networking":        {"🤝", indigo},
	"language exchange": {"🗣️", teal},
	"travel":            {"✈️", sky},
	"road trip":         {"🚗", sky},
	"market":            {"🛍️", amber},
	"shopping":          {"🛍️", pink},

	// learning and play
	"workshop":    {"🎯", violet},
	"conference":  {"🎤", indigo},
	"tech talk":   {"💻", indigo},
	"hackathon":   {"💻", violet},
	"coding":      {"👨‍💻", violet},
	"study group": {"📝", blue},
	"gaming":      {"🎮", purple},
	"board games": {"🎲", purple},
	"trivia":      {"❓", yellow},

	// community
	"volunteering": {"🙌", teal},
	"cleanup":      {"♻️", green},
	"charity":      {"💝", rose},
	"dog walking":  {"🐕", amber},
	"pets":         {"🐾", amber},
}

// keysByLength lists dictionary keys longest first, ties alphabetical.
var keysByLength = func() []string {
	keys := make([]string, 0, len(dictionary))
	for k := range dictionary {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}()

// Keywords returns the dictionary keywords in alphabetical order.
func Keywords() []string {
	keys := make([]string, len(keysByLength))
	copy(keys, keysByLength)
	sort.Strings(keys)
	return keys
}

// Lookup returns the descriptor registered for keyword, labelled with keyword.
// The second result is false when keyword is not in the dictionary.
func Lookup(keyword string) (Descriptor, bool) {
	s, ok := dictionary[keyword]
	if !ok {
		return Descriptor{}, false
	}
	return s.descriptor(keyword), true
}

func (s style) descriptor(label string) Descriptor {
	return Descriptor{
		Icon:     s.icon,
		Color:    s.palette.Color,
		Gradient: s.palette.gradient(),
		Label:    label,
	}
}
