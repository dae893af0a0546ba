package common

import (
	"fmt"
	"os"
	"strconv"
)

const defaultServerPort = 8790

func GetServerPort() int {
	port := os.Getenv("ORDERDESK_SERVER_PORT")
	if port == "" {
		return defaultServerPort
	}

	intPort, err := strconv.Atoi(port)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse orderdesk server port: %s", port))
	}
	return intPort
}
