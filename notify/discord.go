package notify

import (
	"encoding/json"
	"time"

	"github.com/Technova-K02/eth-monitor/config"
	"github.com/Technova-K02/eth-monitor/network"
	"github.com/Technova-K02/eth-monitor/types"
)

type discordField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type discordFooter struct {
	Text string `json:"text"`
}

type discordEmbed struct {
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Url         string         `json:"url,omitempty"`
	Color       int            `json:"color"`
	Timestamp   string         `json:"timestamp"`
	Fields      []discordField `json:"fields,omitempty"`
	Footer      *discordFooter `json:"footer,omitempty"`
}

type discordMessage struct {
	Username string         `json:"username,omitempty"`
	Embeds   []discordEmbed `json:"embeds"`
}

type discordNotifier struct {
	cfg         config.Notifier
	networkHttp network.Http
}

func (d *discordNotifier) Notify(n *types.Notification) error {
	embed := discordEmbed{
		Title:       n.Title,
		Description: n.Body,
		Url:         n.Link,
		Color:       n.Color,
		Timestamp:   n.Timestamp.UTC().Format(time.RFC3339),
	}
	for _, field := range n.Fields {
		embed.Fields = append(embed.Fields, discordField{
			Name:   field.Name,
			Value:  field.Value,
			Inline: field.Inline,
		})
	}
	if n.Id != "" {
		embed.Footer = &discordFooter{Text: n.Id}
	}

	body, err := json.Marshal(discordMessage{
		Username: d.cfg.Username,
		Embeds:   []discordEmbed{embed},
	})
	if err != nil {
		return err
	}

	_, err = d.networkHttp.Post(d.cfg.WebhookUrl, body)

	return err
}
