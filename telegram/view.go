package telegram

import (
	"unicode/utf8"

	"github.com/matchingram/matchingram/matcher"
	"github.com/matchingram/matchingram/schema"
)

// MessageView adapts one Message to the matcher's field lookups. It
// borrows the message for the duration of an evaluation. Synthesized
// fields (text.size, full_name, is_service_message, is_command) are
// computed only when the matcher asks for them.
type MessageView struct {
	msg *Message
}

// NewView wraps a decoded message.
func NewView(m *Message) *MessageView {
	return &MessageView{msg: m}
}

// Get implements matcher.View. Missing, null and empty-collection
// fields read as None; presence-kinded fields read as Present.
func (v *MessageView) Get(id schema.FieldID) matcher.FieldValue {
	m := v.msg
	switch id {
	case schema.FromID:
		if m.From == nil {
			return matcher.None()
		}
		return matcher.Int(m.From.ID)
	case schema.FromIsBot:
		return matcher.Bool(m.From != nil && m.From.IsBot)
	case schema.FromFirstName:
		if m.From == nil {
			return matcher.None()
		}
		return str(m.From.FirstName)
	case schema.FromFullName:
		if m.From == nil {
			return matcher.None()
		}
		return str(m.From.FullName())
	case schema.FromLanguageCode:
		if m.From == nil {
			return matcher.None()
		}
		return str(m.From.LanguageCode)

	case schema.ForwardFromChat:
		return matcher.Present(m.ForwardFromChat != nil)
	case schema.ForwardFromChatID:
		if m.ForwardFromChat == nil {
			return matcher.None()
		}
		return matcher.Int(m.ForwardFromChat.ID)
	case schema.ForwardFromChatType:
		if m.ForwardFromChat == nil {
			return matcher.None()
		}
		return str(m.ForwardFromChat.Type)
	case schema.ForwardFromChatTitle:
		if m.ForwardFromChat == nil {
			return matcher.None()
		}
		return str(m.ForwardFromChat.Title)

	case schema.ReplyToMessage:
		return matcher.Present(m.ReplyToMessage != nil)

	case schema.Text:
		return str(m.Text)
	case schema.TextSize:
		return strSize(m.Text)

	case schema.Animation:
		return matcher.Present(m.Animation != nil)
	case schema.AnimationDuration:
		if m.Animation == nil {
			return matcher.None()
		}
		return matcher.Int(m.Animation.Duration)
	case schema.AnimationFileName:
		if m.Animation == nil {
			return matcher.None()
		}
		return str(m.Animation.FileName)
	case schema.AnimationMimeType:
		if m.Animation == nil {
			return matcher.None()
		}
		return str(m.Animation.MimeType)
	case schema.AnimationFileSize:
		if m.Animation == nil {
			return matcher.None()
		}
		return optInt(m.Animation.FileSize)

	case schema.Audio:
		return matcher.Present(m.Audio != nil)
	case schema.AudioDuration:
		if m.Audio == nil {
			return matcher.None()
		}
		return matcher.Int(m.Audio.Duration)
	case schema.AudioPerformer:
		if m.Audio == nil {
			return matcher.None()
		}
		return str(m.Audio.Performer)
	case schema.AudioMimeType:
		if m.Audio == nil {
			return matcher.None()
		}
		return str(m.Audio.MimeType)
	case schema.AudioFileSize:
		if m.Audio == nil {
			return matcher.None()
		}
		return optInt(m.Audio.FileSize)

	case schema.Document:
		return matcher.Present(m.Document != nil)
	case schema.DocumentFileName:
		if m.Document == nil {
			return matcher.None()
		}
		return str(m.Document.FileName)
	case schema.DocumentMimeType:
		if m.Document == nil {
			return matcher.None()
		}
		return str(m.Document.MimeType)
	case schema.DocumentFileSize:
		if m.Document == nil {
			return matcher.None()
		}
		return optInt(m.Document.FileSize)

	case schema.Photo:
		return matcher.Present(len(m.Photo) > 0)

	case schema.Sticker:
		return matcher.Present(m.Sticker != nil)
	case schema.StickerIsAnimated:
		return matcher.Bool(m.Sticker != nil && m.Sticker.IsAnimated)
	case schema.StickerEmoji:
		if m.Sticker == nil {
			return matcher.None()
		}
		return str(m.Sticker.Emoji)
	case schema.StickerSetName:
		if m.Sticker == nil {
			return matcher.None()
		}
		return str(m.Sticker.SetName)

	case schema.Video:
		return matcher.Present(m.Video != nil)
	case schema.VideoDuration:
		if m.Video == nil {
			return matcher.None()
		}
		return matcher.Int(m.Video.Duration)
	case schema.VideoMimeType:
		if m.Video == nil {
			return matcher.None()
		}
		return str(m.Video.MimeType)
	case schema.VideoFileSize:
		if m.Video == nil {
			return matcher.None()
		}
		return optInt(m.Video.FileSize)

	case schema.Voice:
		return matcher.Present(m.Voice != nil)
	case schema.VoiceDuration:
		if m.Voice == nil {
			return matcher.None()
		}
		return matcher.Int(m.Voice.Duration)
	case schema.VoiceMimeType:
		if m.Voice == nil {
			return matcher.None()
		}
		return str(m.Voice.MimeType)
	case schema.VoiceFileSize:
		if m.Voice == nil {
			return matcher.None()
		}
		return optInt(m.Voice.FileSize)

	case schema.Caption:
		return str(m.Caption)
	case schema.CaptionSize:
		return strSize(m.Caption)

	case schema.Dice:
		return matcher.Present(m.Dice != nil)
	case schema.DiceEmoji:
		if m.Dice == nil {
			return matcher.None()
		}
		return str(m.Dice.Emoji)

	case schema.Poll:
		return matcher.Present(m.Poll != nil)
	case schema.PollType:
		if m.Poll == nil {
			return matcher.None()
		}
		return str(m.Poll.Type)

	case schema.Venue:
		return matcher.Present(m.Venue != nil)
	case schema.VenueTitle:
		if m.Venue == nil {
			return matcher.None()
		}
		return str(m.Venue.Title)
	case schema.VenueAddress:
		if m.Venue == nil {
			return matcher.None()
		}
		return str(m.Venue.Address)

	case schema.Location:
		return matcher.Present(m.Location != nil)
	case schema.LocationLongitude:
		if m.Location == nil {
			return matcher.None()
		}
		return matcher.Float(m.Location.Longitude)
	case schema.LocationLatitude:
		if m.Location == nil {
			return matcher.None()
		}
		return matcher.Float(m.Location.Latitude)

	case schema.NewChatMembers:
		return matcher.Present(len(m.NewChatMembers) > 0)
	case schema.LeftChatMember:
		return matcher.Present(m.LeftChatMember != nil)
	case schema.NewChatTitle:
		return matcher.Present(m.NewChatTitle != "")
	case schema.NewChatPhoto:
		return matcher.Present(len(m.NewChatPhoto) > 0)
	case schema.PinnedMessage:
		return matcher.Present(m.PinnedMessage != nil)

	case schema.IsServiceMessage:
		return matcher.Bool(len(m.NewChatMembers) > 0 ||
			m.NewChatTitle != "" ||
			len(m.NewChatPhoto) > 0 ||
			m.PinnedMessage != nil)
	case schema.IsCommand:
		return matcher.Bool(isCommand(m.Text))

	default:
		return matcher.None()
	}
}

func str(s string) matcher.FieldValue {
	if s == "" {
		return matcher.None()
	}
	return matcher.Str(s)
}

// strSize is the Unicode scalar count of the string, None when absent.
func strSize(s string) matcher.FieldValue {
	if s == "" {
		return matcher.None()
	}
	return matcher.Int(int64(utf8.RuneCountInString(s)))
}

func optInt(p *int64) matcher.FieldValue {
	if p == nil {
		return matcher.None()
	}
	return matcher.Int(*p)
}

// isCommand reports whether text starts a bot command: "/" followed by
// at least one identifier character.
func isCommand(text string) bool {
	if len(text) < 2 || text[0] != '/' {
		return false
	}
	c := text[1]
	return c == '_' ||
		('a' <= c && c <= 'z') ||
		('A' <= c && c <= 'Z') ||
		('0' <= c && c <= '9')
}
