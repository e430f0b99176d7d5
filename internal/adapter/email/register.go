package email

import (
	"strconv"

	"github.com/greenlight-hq/greenlight/internal/port/notifier"
)

func init() {
	notifier.Register(providerName, func(config map[string]string) (notifier.Notifier, error) {
		port, _ := strconv.Atoi(config["port"])
		if port == 0 {
			port = 587
		}
		return NewNotifier(SMTPConfig{
			Host:     config["host"],
			Port:     port,
			From:     config["from"],
			Password: config["password"],
			To:       config["to"],
		}), nil
	})
}
