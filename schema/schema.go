// Package schema declares the closed table of rule fields: every
// addressable field path, its value kind, and the set of operators it
// supports. The table is built once at initialization and never
// mutated; all field knowledge in the engine lives here.
package schema

// Operator is one of the closed set of condition operators.
type Operator uint8

const (
	// OpNone marks a bare condition (no operator written).
	OpNone Operator = iota
	OpEq
	OpGt
	OpGe
	OpLe
	OpIn
	OpAny
	OpAll
	OpHd
)

var operatorWords = map[string]Operator{
	"eq":  OpEq,
	"gt":  OpGt,
	"ge":  OpGe,
	"le":  OpLe,
	"in":  OpIn,
	"any": OpAny,
	"all": OpAll,
	"hd":  OpHd,
}

// ParseOperator maps an operator word to its Operator. Retired aliases
// (contains_one, contains_all, starts_with) are not recognized.
func ParseOperator(word string) (Operator, bool) {
	op, ok := operatorWords[word]
	return op, ok
}

func (o Operator) String() string {
	switch o {
	case OpEq:
		return "eq"
	case OpGt:
		return "gt"
	case OpGe:
		return "ge"
	case OpLe:
		return "le"
	case OpIn:
		return "in"
	case OpAny:
		return "any"
	case OpAll:
		return "all"
	case OpHd:
		return "hd"
	default:
		return ""
	}
}

// Kind is the logical kind of a field's value.
type Kind uint8

const (
	KindBool Kind = iota
	KindPresence
	KindString
	KindInt
	KindFloat
	KindComposite // parent of other fields; only testable as presence
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindPresence:
		return "presence"
	case KindString:
		return "string"
	case KindInt:
		return "integer"
	case KindFloat:
		return "float"
	case KindComposite:
		return "composite"
	default:
		return "unknown"
	}
}

// Numeric reports whether the kind compares as a number.
func (k Kind) Numeric() bool {
	return k == KindInt || k == KindFloat
}

// BareTestable reports whether a condition on the field may omit the
// operator.
func (k Kind) BareTestable() bool {
	return k == KindBool || k == KindPresence || k == KindComposite
}

// FieldID indexes the field table. Compiled conditions store it so the
// matcher never touches path strings.
type FieldID int

const (
	FromID FieldID = iota
	FromIsBot
	FromFirstName
	FromFullName
	FromLanguageCode
	ForwardFromChat
	ForwardFromChatID
	ForwardFromChatType
	ForwardFromChatTitle
	ReplyToMessage
	Text
	TextSize
	Animation
	AnimationDuration
	AnimationFileName
	AnimationMimeType
	AnimationFileSize
	Audio
	AudioDuration
	AudioPerformer
	AudioMimeType
	AudioFileSize
	Document
	DocumentFileName
	DocumentMimeType
	DocumentFileSize
	Photo
	Sticker
	StickerIsAnimated
	StickerEmoji
	StickerSetName
	Video
	VideoDuration
	VideoMimeType
	VideoFileSize
	Voice
	VoiceDuration
	VoiceMimeType
	VoiceFileSize
	Caption
	CaptionSize
	Dice
	DiceEmoji
	Poll
	PollType
	Venue
	VenueTitle
	VenueAddress
	Location
	LocationLongitude
	LocationLatitude
	NewChatMembers
	LeftChatMember
	NewChatTitle
	NewChatPhoto
	PinnedMessage
	IsServiceMessage
	IsCommand

	fieldCount
)

// Field is one row of the table.
type Field struct {
	Path string
	Kind Kind
	ops  opSet
}

type opSet uint16

func ops(list ...Operator) opSet {
	var s opSet
	for _, o := range list {
		s |= 1 << o
	}
	return s
}

func (s opSet) has(o Operator) bool { return s&(1<<o) != 0 }

var (
	cmpOps     = ops(OpEq, OpGt, OpGe, OpLe)
	nameOps    = ops(OpEq, OpIn, OpAny, OpAll, OpHd)
	textOps    = ops(OpEq, OpAny, OpAll, OpHd)
	mimeOps    = ops(OpEq, OpIn, OpHd)
	enumOps    = ops(OpEq, OpIn)
	bareOnly   = ops()
	messageOps = ops(OpEq, OpIn, OpAny, OpAll)
)

// The support matrix. Rows the matrix leaves without operators are
// bare-testable only.
var fields = [fieldCount]Field{
	FromID:               {"message.from.id", KindInt, ops(OpEq, OpGt, OpGe, OpLe, OpIn)},
	FromIsBot:            {"message.from.is_bot", KindBool, bareOnly},
	FromFirstName:        {"message.from.first_name", KindString, nameOps},
	FromFullName:         {"message.from.full_name", KindString, nameOps},
	FromLanguageCode:     {"message.from.language_code", KindString, mimeOps},
	ForwardFromChat:      {"message.forward_from_chat", KindComposite, bareOnly},
	ForwardFromChatID:    {"message.forward_from_chat.id", KindInt, cmpOps},
	ForwardFromChatType:  {"message.forward_from_chat.type", KindString, enumOps},
	ForwardFromChatTitle: {"message.forward_from_chat.title", KindString, textOps},
	ReplyToMessage:       {"message.reply_to_message", KindComposite, bareOnly},
	Text:                 {"message.text", KindString, messageOps},
	TextSize:             {"message.text.size", KindInt, cmpOps},
	Animation:            {"message.animation", KindComposite, bareOnly},
	AnimationDuration:    {"message.animation.duration", KindInt, cmpOps},
	AnimationFileName:    {"message.animation.file_name", KindString, textOps},
	AnimationMimeType:    {"message.animation.mime_type", KindString, mimeOps},
	AnimationFileSize:    {"message.animation.file_size", KindInt, cmpOps},
	Audio:                {"message.audio", KindComposite, bareOnly},
	AudioDuration:        {"message.audio.duration", KindInt, cmpOps},
	AudioPerformer:       {"message.audio.performer", KindString, textOps},
	AudioMimeType:        {"message.audio.mime_type", KindString, mimeOps},
	AudioFileSize:        {"message.audio.file_size", KindInt, cmpOps},
	Document:             {"message.document", KindComposite, bareOnly},
	DocumentFileName:     {"message.document.file_name", KindString, textOps},
	DocumentMimeType:     {"message.document.mime_type", KindString, mimeOps},
	DocumentFileSize:     {"message.document.file_size", KindInt, cmpOps},
	Photo:                {"message.photo", KindPresence, bareOnly},
	Sticker:              {"message.sticker", KindComposite, bareOnly},
	StickerIsAnimated:    {"message.sticker.is_animated", KindBool, bareOnly},
	StickerEmoji:         {"message.sticker.emoji", KindString, enumOps},
	StickerSetName:       {"message.sticker.set_name", KindString, textOps},
	Video:                {"message.video", KindComposite, bareOnly},
	VideoDuration:        {"message.video.duration", KindInt, cmpOps},
	VideoMimeType:        {"message.video.mime_type", KindString, mimeOps},
	VideoFileSize:        {"message.video.file_size", KindInt, cmpOps},
	Voice:                {"message.voice", KindComposite, bareOnly},
	VoiceDuration:        {"message.voice.duration", KindInt, cmpOps},
	VoiceMimeType:        {"message.voice.mime_type", KindString, mimeOps},
	VoiceFileSize:        {"message.voice.file_size", KindInt, cmpOps},
	Caption:              {"message.caption", KindString, textOps},
	CaptionSize:          {"message.caption.size", KindInt, cmpOps},
	Dice:                 {"message.dice", KindComposite, bareOnly},
	DiceEmoji:            {"message.dice.emoji", KindString, enumOps},
	Poll:                 {"message.poll", KindComposite, bareOnly},
	PollType:             {"message.poll.type", KindString, enumOps},
	Venue:                {"message.venue", KindComposite, bareOnly},
	VenueTitle:           {"message.venue.title", KindString, textOps},
	VenueAddress:         {"message.venue.address", KindString, textOps},
	Location:             {"message.location", KindComposite, bareOnly},
	LocationLongitude:    {"message.location.longitude", KindFloat, cmpOps},
	LocationLatitude:     {"message.location.latitude", KindFloat, cmpOps},
	NewChatMembers:       {"message.new_chat_members", KindPresence, bareOnly},
	LeftChatMember:       {"message.left_chat_member", KindComposite, bareOnly},
	NewChatTitle:         {"message.new_chat_title", KindPresence, bareOnly},
	NewChatPhoto:         {"message.new_chat_photo", KindPresence, bareOnly},
	PinnedMessage:        {"message.pinned_message", KindComposite, bareOnly},
	IsServiceMessage:     {"message.is_service_message", KindBool, bareOnly},
	IsCommand:            {"message.is_command", KindBool, bareOnly},
}

var byPath = func() map[string]FieldID {
	m := make(map[string]FieldID, len(fields))
	for id, f := range fields {
		m[f.Path] = FieldID(id)
	}
	return m
}()

// Lookup resolves a dotted field path.
func Lookup(path string) (FieldID, bool) {
	id, ok := byPath[path]
	return id, ok
}

// Get returns the table row for id. id must come from Lookup or the
// FieldID constants.
func Get(id FieldID) Field {
	return fields[id]
}

// Allows reports whether op may be applied to the field.
func Allows(id FieldID, op Operator) bool {
	return fields[id].ops.has(op)
}

// Operators lists the field's allowed operators in declaration order.
func Operators(id FieldID) []Operator {
	var out []Operator
	for o := OpEq; o <= OpHd; o++ {
		if fields[id].ops.has(o) {
			out = append(out, o)
		}
	}
	return out
}

// Count is the number of fields in the table.
func Count() int { return int(fieldCount) }
