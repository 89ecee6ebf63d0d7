package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	character := flag.String("character", "", "character type to preview (defaults to the lobby choice or the first catalog entry)")
	clip := flag.String("clip", "", "clip to play on the stage instead of the whole sheet")
	atlasDir := flag.String("atlas", "", "directory holding characters.yaml; enables hot reload")
	assetDir := flag.String("assets", "", "directory searched for sprite images before the embedded copies")
	apiURL := flag.String("api", "", "lobby API base URL, e.g. http://localhost:8080")
	token := flag.String("token", "", "lobby bearer token")
	guest := flag.Bool("guest", false, "sign in as a guest when no token is given")
	selectMode := flag.Bool("select", false, "open the character selector at start")
	baseMonitor := flag.Bool("m", false, "use base monitor instead of primary (for multi-monitor setups)")
	flag.Parse()

	if *baseMonitor {
		ebiten.SetMonitor(ebiten.AppendMonitors(nil)[0])
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(baseWidth, baseHeight)
	ebiten.SetWindowTitle("arena preview")

	game, err := NewGame(Config{
		Character: *character,
		Clip:      *clip,
		AtlasDir:  *atlasDir,
		AssetDir:  *assetDir,
		APIURL:    *apiURL,
		Token:     *token,
		Guest:     *guest,
		Select:    *selectMode,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer game.Close()

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
