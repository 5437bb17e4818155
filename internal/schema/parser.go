package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"cyoa-server/internal/domain"

	"github.com/go-playground/validator/v10"
)

// Сырые структуры ответа LLM. Указатели отличают отсутствующее поле от нулевого значения.
type rawEnvelope struct {
	Title    *string  `json:"title" validate:"required"`
	RootNode *rawNode `json:"rootNode" validate:"required"`
}

type rawNode struct {
	Content         *string     `json:"content" validate:"required"`
	IsEnding        *bool       `json:"isEnding" validate:"required"`
	IsWinningEnding *bool       `json:"isWinningEnding" validate:"required"`
	Options         []rawOption `json:"options" validate:"omitempty,dive"`
}

type rawOption struct {
	Text     *string  `json:"text" validate:"required"`
	NextNode *rawNode `json:"nextNode" validate:"required"`
}

// Parser преобразует текст ответа LLM в типизированное дерево истории.
type Parser struct {
	validate *validator.Validate
}

// NewParser создает парсер со своим экземпляром валидатора.
func NewParser() *Parser {
	v := validator.New(validator.WithRequiredStructEnabled())
	// В сообщениях об ошибках используем имена полей из JSON
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Parser{validate: v}
}

// Parse снимает Markdown-обертку и строго типизирует дерево.
// Любая структурная ошибка оборачивает domain.ErrMalformedResponse.
// Количество вариантов и согласованность флагов концовки не проверяются.
func (p *Parser) Parse(raw string) (*domain.StoryTree, error) {
	payload := StripCodeFence(raw)
	if payload == "" {
		return nil, fmt.Errorf("%w: empty response", domain.ErrMalformedResponse)
	}

	var envelope rawEnvelope
	if err := json.Unmarshal([]byte(payload), &envelope); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrMalformedResponse, describeJSONError(err))
	}

	if err := p.validate.Struct(&envelope); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrMalformedResponse, describeValidationError(err))
	}

	root, err := convertNode(envelope.RootNode, "rootNode")
	if err != nil {
		return nil, err
	}

	return &domain.StoryTree{Title: *envelope.Title, Root: root}, nil
}

func convertNode(raw *rawNode, path string) (domain.StoryTreeNode, error) {
	node := domain.StoryTreeNode{
		Content:         *raw.Content,
		IsEnding:        *raw.IsEnding,
		IsWinningEnding: *raw.IsWinningEnding,
	}

	if len(raw.Options) > 0 {
		node.Options = make([]domain.TreeOption, 0, len(raw.Options))
	}
	for i := range raw.Options {
		childPath := fmt.Sprintf("%s.options[%d].nextNode", path, i)
		child, err := convertNode(raw.Options[i].NextNode, childPath)
		if err != nil {
			return domain.StoryTreeNode{}, err
		}
		node.Options = append(node.Options, domain.TreeOption{Text: *raw.Options[i].Text, NextNode: child})
	}
	return node, nil
}

func describeJSONError(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return fmt.Sprintf("field %q has type %s, expected %s", typeErr.Field, typeErr.Value, typeErr.Type)
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return fmt.Sprintf("invalid JSON at offset %d: %v", syntaxErr.Offset, syntaxErr)
	}
	return err.Error()
}

func describeValidationError(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err.Error()
	}
	missing := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		missing = append(missing, fe.Namespace())
	}
	return "missing required fields: " + strings.Join(missing, ", ")
}
