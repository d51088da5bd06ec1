package httpadapter

import (
	"net/http"

	"github.com/vlad-alaukhov/Docibot/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrCategoryNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrInvalidState):
		return http.StatusConflict
	case domain.IsKind(err, domain.ErrStaleSession):
		return http.StatusGone
	case domain.IsKind(err, domain.ErrLoadFailed):
		return http.StatusBadGateway
	case domain.IsKind(err, domain.ErrAllIndexesFailed), domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// userMessage is the short Russian text a chat front end can show verbatim.
func userMessage(err error) string {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return "Запрос не может быть пустым."
	case domain.IsKind(err, domain.ErrCategoryNotFound):
		return "Такой категории нет. Выберите категорию из списка."
	case domain.IsKind(err, domain.ErrInvalidState):
		return "Сначала выберите категорию документов."
	case domain.IsKind(err, domain.ErrStaleSession):
		return "Результаты устарели. Повторите поиск."
	case domain.IsKind(err, domain.ErrLoadFailed):
		return "Не удалось загрузить базу документов. Попробуйте ещё раз."
	case domain.IsKind(err, domain.ErrAllIndexesFailed), domain.IsKind(err, domain.ErrTemporary):
		return "Сервис временно недоступен. Попробуйте позже."
	default:
		return "Внутренняя ошибка. Попробуйте позже."
	}
}
