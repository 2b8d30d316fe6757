// Package smtp реализует почтовый транспорт для воркера рассылки.
package smtp

import "io"

// Client описывает минимальный набор операций SMTP-сессии,
// необходимый сервису рассылки. Выделен в интерфейс для подмены в тестах.
type Client interface {
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}
