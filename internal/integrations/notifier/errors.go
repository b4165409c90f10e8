package notifier

import "errors"

var (
	// ErrEncode возвращается, когда событие не удалось сериализовать
	ErrEncode = errors.New("notifier: failed to encode event")

	// ErrPublish возвращается, когда брокер не принял сообщение
	ErrPublish = errors.New("notifier: failed to publish event")
)
