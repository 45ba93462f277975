// Package booking извлекает директиву подтверждения записи из ответа
// ассистента и превращает её в запись.
package booking

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/Zanvi/lacasabarber/internal/validation"
	"github.com/Zanvi/lacasabarber/pkg/errors"
)

// Prefix открывает директиву в тексте ассистента
const Prefix = "[BOOKING_CONFIRMED:"

// Directive содержит поля подтвержденной записи
type Directive struct {
	Service string `json:"service"`
	Date    string `json:"date"`
	Time    string `json:"time"`
}

// String возвращает директиву в том виде, в каком ее пишет ассистент
func (d Directive) String() string {
	payload, _ := json.Marshal(d)
	return Prefix + " " + string(payload) + "]"
}

// Extraction результат разбора ответа ассистента
type Extraction struct {
	// Text текст для показа пользователю
	Text string
	// Directive не nil, только если директива найдена и корректна
	Directive *Directive
	// Raw найденная директива целиком, включая скобки
	Raw string
	// Err ошибка декодирования найденной директивы
	Err error
}

// Found сообщает, была ли в тексте структурно полная директива
func (e Extraction) Found() bool {
	return e.Raw != ""
}

// Extract ищет первую структурно полную директиву. Корректная директива
// вырезается из текста, а результат обрезается по краям. Некорректная
// директива оставляет текст без изменений и возвращается в Err.
func Extract(text string) Extraction {
	start, end, bodyStart, bodyEnd, ok := locate(text)
	if !ok {
		return Extraction{Text: text}
	}

	raw := text[start:end]
	d, err := decode(text[bodyStart:bodyEnd])
	if err != nil {
		return Extraction{Text: text, Raw: raw, Err: err}
	}

	return Extraction{
		Text:      strings.TrimSpace(text[:start] + text[end:]),
		Directive: &d,
		Raw:       raw,
	}
}

// locate возвращает границы первой директивы вида
// [BOOKING_CONFIRMED: {...}] на одной строке
func locate(text string) (start, end, bodyStart, bodyEnd int, ok bool) {
	offset := 0
	for offset < len(text) {
		i := strings.Index(text[offset:], Prefix)
		if i < 0 {
			return 0, 0, 0, 0, false
		}
		start = offset + i

		bodyStart, bodyEnd, end, ok = scan(text, start+len(Prefix))
		if ok {
			return start, end, bodyStart, bodyEnd, true
		}
		offset = start + 1
	}
	return 0, 0, 0, 0, false
}

// scan разбирает ` {json} ]` начиная с pos
func scan(text string, pos int) (bodyStart, bodyEnd, end int, ok bool) {
	pos = skipBlanks(text, pos)
	if pos >= len(text) || text[pos] != '{' {
		return 0, 0, 0, false
	}
	bodyStart = pos

	bodyEnd, ok = matchObject(text, pos)
	if !ok {
		return 0, 0, 0, false
	}

	pos = skipBlanks(text, bodyEnd)
	if pos >= len(text) || text[pos] != ']' {
		return 0, 0, 0, false
	}
	return bodyStart, bodyEnd, pos + 1, true
}

// matchObject находит конец JSON-объекта, начинающегося с '{' в pos.
// Скобки внутри строк не учитываются; перевод строки обрывает поиск.
func matchObject(text string, pos int) (int, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := pos; i < len(text); i++ {
		c := text[i]
		if c == '\n' || c == '\r' {
			return 0, false
		}

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1, true
			}
		}
	}
	return 0, false
}

func skipBlanks(text string, pos int) int {
	for pos < len(text) && (text[pos] == ' ' || text[pos] == '\t') {
		pos++
	}
	return pos
}

type rawDirective struct {
	Service *string `json:"service"`
	Date    *string `json:"date"`
	Time    *string `json:"time"`
}

func decode(body string) (Directive, error) {
	var raw rawDirective
	dec := json.NewDecoder(bytes.NewReader([]byte(body)))
	if err := dec.Decode(&raw); err != nil {
		return Directive{}, errors.ErrMalformedDirective.WithError(err)
	}

	missing := make([]string, 0, 3)
	if raw.Service == nil || strings.TrimSpace(*raw.Service) == "" {
		missing = append(missing, "service")
	}
	if raw.Date == nil {
		missing = append(missing, "date")
	}
	if raw.Time == nil {
		missing = append(missing, "time")
	}
	if len(missing) > 0 {
		return Directive{}, errors.ErrMalformedDirective.WithContext(map[string]interface{}{
			"missing": missing,
		})
	}

	if _, err := validation.ValidateDate(*raw.Date); err != nil {
		return Directive{}, errors.ErrMalformedDirective.WithError(err)
	}
	if _, err := validation.ValidateTime(*raw.Time); err != nil {
		return Directive{}, errors.ErrMalformedDirective.WithError(err)
	}

	return Directive{Service: *raw.Service, Date: *raw.Date, Time: *raw.Time}, nil
}
