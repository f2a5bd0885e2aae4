// Package delivery 负责把通知投递给最终用户
package delivery

import (
	"context"
	"fmt"

	"essay-duet-api/internal/domain/service"
)

// Notifier 通知投递接口
type Notifier interface {
	Deliver(ctx context.Context, n service.Notification) error
}

// RenderText 按意图渲染通知正文
func RenderText(n service.Notification) string {
	switch n.Intent {
	case service.IntentJoinedNotice:
		return fmt.Sprintf("%s joined your essay %q. They will write the next part.",
			n.ActorName, n.Topic)
	case service.IntentPromptWrite:
		if n.Content != "" {
			return fmt.Sprintf("You joined %q. The story so far: %q. It's your turn to write.",
				n.Topic, n.Content)
		}
		return fmt.Sprintf("You joined %q. It's your turn to write.", n.Topic)
	case service.IntentTurnNotice:
		return fmt.Sprintf("%s added %d words to %q: %q. It's your turn now.",
			n.ActorName, n.WordCount, n.Topic, n.Content)
	case service.IntentFinishOffer:
		return fmt.Sprintf("%s suggests finishing %q. Accept to complete the essay or decline to keep writing.",
			n.ActorName, n.Topic)
	case service.IntentFinishAccepted:
		return fmt.Sprintf("Your essay %q is complete. The document is ready for download.", n.Topic)
	case service.IntentFinishDeclined:
		return fmt.Sprintf("%s wants to keep writing %q. The essay continues.",
			n.ActorName, n.Topic)
	default:
		return fmt.Sprintf("Update on your essay %q.", n.Topic)
	}
}
