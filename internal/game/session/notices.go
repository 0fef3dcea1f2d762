package session

import "fmt"

type noticeTexts struct {
	joined      string
	left        string
	drawing     string
	guessed     string
	allGuessed  string
	timeout     string
	gameOver    string
	needPlayers string
}

var notices = map[string]noticeTexts{
	"zh": {
		joined:      "%s 加入了房间。",
		left:        "%s 离开了房间。",
		drawing:     "%s 正在画。",
		guessed:     "%s 猜对了！(+%d 分)",
		allGuessed:  "回合结束，答案是「%s」。",
		timeout:     "时间到，答案是「%s」。",
		gameOver:    "游戏结束！所有玩家都已作画。",
		needPlayers: "至少需要 2 名玩家才能开始。",
	},
	"en": {
		joined:      "%s joined the room.",
		left:        "%s left the room.",
		drawing:     "%s is drawing.",
		guessed:     "%s guessed it! (+%d)",
		allGuessed:  "Round over, the word was \"%s\".",
		timeout:     "Time's up, the word was \"%s\".",
		gameOver:    "Game over! Everyone has drawn.",
		needPlayers: "At least 2 players are needed to start.",
	},
}

func textsFor(language string) noticeTexts {
	if t, ok := notices[language]; ok {
		return t
	}
	return notices["zh"]
}

func (t noticeTexts) roundEnded(reason EndReason, word string) string {
	if reason == ReasonAllGuessed {
		return fmt.Sprintf(t.allGuessed, word)
	}
	return fmt.Sprintf(t.timeout, word)
}
