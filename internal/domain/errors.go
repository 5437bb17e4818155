package domain

import "errors"

// Общие ошибки приложения
var (
	// Конфигурация
	ErrConfiguration = errors.New("configuration error") // Отсутствует обязательный ключ или параметр

	// Генерация истории
	ErrLLMGeneration     = errors.New("llm generation failed")
	ErrMalformedResponse = errors.New("malformed llm response")
	ErrTreeTooLarge      = errors.New("story tree exceeds configured limits")

	// Генерация изображений
	ErrGenerationTimeout  = errors.New("image generation timed out")
	ErrGenerationRejected = errors.New("image generation rejected")
	ErrRateLimited        = errors.New("image provider rate limit exceeded")

	// Хранилище и запросы
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input data")

	// Задачи генерации
	ErrJobAlreadyClaimed = errors.New("story job is already claimed")
)
