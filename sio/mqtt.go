/* Copyright 2019 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package sio

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// ErrTimeout is returned when the broker doesn't acknowledge in
// time.
var ErrTimeout = errors.New("MQTT timeout")

// MQTTSink is a Sink that publishes each point to an MQTT broker.
type MQTTSink struct {
	Client mqtt.Client

	// Topic is the topic for points.  Any "%s" is replaced by the
	// trajectory name.
	Topic string

	QoS    byte
	Retain bool

	// Quiesce is the disconnection quiescence in milliseconds.
	Quiesce uint

	// PubTimeout limits how long Emit waits for the broker.
	PubTimeout time.Duration
}

// NewMQTTSink makes an MQTTSink from command-line arguments.  If args
// is nil, only the FlagSet is returned, which is useful for usage
// messages.
func NewMQTTSink(args []string) (*MQTTSink, *flag.FlagSet, error) {
	var (
		// Follow mosquitto_pub command line args.

		fs = flag.NewFlagSet("mqtt", flag.ContinueOnError)

		broker      = fs.String("h", "tcp://localhost", "Broker hostname")
		clientId    = fs.String("i", "", "Client id")
		port        = fs.Int("p", 1883, "Broker port")
		keepAlive   = fs.Int("k", 10, "Keep-alive in seconds")
		userName    = fs.String("u", "", "Username")
		password    = fs.String("P", "", "Password")
		willTopic   = fs.String("will-topic", "", "Optional will topic")
		willPayload = fs.String("will-payload", "", "Optional will message")
		willQoS     = fs.Int("will-qos", 0, "Optional will QoS")
		willRetain  = fs.Bool("will-retain", false, "Optional will retention")
		reconnect   = fs.Bool("reconnect", false, "Automatically attempt to reconnect")
		clean       = fs.Bool("c", true, "Clean session")
		quiesce     = fs.Int("quiesce", 100, "Disconnection quiescence (in milliseconds)")

		certFilename = fs.String("cert", "", "Optional cert filename")
		keyFilename  = fs.String("key", "", "Optional key filename")
		insecure     = fs.Bool("insecure", false, "Skip broker cert checking")
		caFilename   = fs.String("cafile", "", "Optional CA cert filename")
		caPath       = fs.String("capath", "", "Optional path to CA cert filename")

		topic      = fs.String("t", "traj/%s/point", "Topic for points")
		qos        = fs.Int("q", 1, "QoS for points")
		retain     = fs.Bool("r", false, "Retain points")
		pubTimeout = fs.Duration("pub-timeout", 5*time.Second, "Timeout for each publish")
	)

	if args == nil {
		return nil, fs, nil
	}

	if err := fs.Parse(args); err != nil {
		return nil, fs, err
	}

	if *qos < 0 || 2 < *qos {
		return nil, fs, fmt.Errorf("bad QoS %d", *qos)
	}

	mqtt.ERROR = log.New(os.Stderr, "mqtt.error", 0)

	opts := mqtt.NewClientOptions()

	opts.AddBroker(fmt.Sprintf("%s:%d", *broker, *port))
	opts.SetClientID(*clientId)
	opts.SetKeepAlive(time.Second * time.Duration(*keepAlive))

	opts.Username = *userName
	opts.Password = *password
	opts.AutoReconnect = *reconnect
	opts.CleanSession = *clean

	if *willTopic != "" {
		if *willPayload == "" {
			return nil, fs, errors.New("will topic without payload")
		}
		opts.WillEnabled = true
		opts.WillTopic = *willTopic
		opts.WillPayload = []byte(*willPayload)
		opts.WillRetained = *willRetain
		opts.WillQos = byte(*willQoS)
	}

	tlsConf := &tls.Config{
		InsecureSkipVerify: *insecure,
	}

	if *caFilename != "" {
		rootCAs, _ := x509.SystemCertPool()
		if rootCAs == nil {
			rootCAs = x509.NewCertPool()
		}
		filename := *caFilename
		if *caPath != "" {
			filename = strings.TrimSuffix(*caPath, "/") + "/" + filename
		}
		certs, err := ioutil.ReadFile(filename)
		if err != nil {
			return nil, fs, fmt.Errorf("couldn't read '%s': %w", filename, err)
		}
		if ok := rootCAs.AppendCertsFromPEM(certs); !ok {
			log.Println("No certs appended, using system certs only")
		}
		tlsConf.RootCAs = rootCAs
	}

	if *keyFilename != "" {
		cert, err := tls.LoadX509KeyPair(*certFilename, *keyFilename)
		if err != nil {
			return nil, fs, err
		}
		tlsConf.Certificates = []tls.Certificate{cert}
	}

	opts.SetTLSConfig(tlsConf)

	opts.OnConnectionLost = func(client mqtt.Client, err error) {
		log.Printf("MQTT connection lost: %s", err)
	}

	s := &MQTTSink{
		Client:     mqtt.NewClient(opts),
		Topic:      *topic,
		QoS:        byte(*qos),
		Retain:     *retain,
		Quiesce:    uint(*quiesce),
		PubTimeout: *pubTimeout,
	}

	return s, fs, nil
}

func wait(t mqtt.Token, timeout time.Duration) error {
	if timeout <= 0 {
		t.Wait()
	} else if !t.WaitTimeout(timeout) {
		return ErrTimeout
	}
	return t.Error()
}

// Start connects to the broker.
func (s *MQTTSink) Start(ctx context.Context) error {
	if s.Client.IsConnected() {
		return nil
	}
	log.Printf("MQTT connecting")
	return wait(s.Client.Connect(), s.PubTimeout)
}

// TopicFor returns the topic for the trajectory's points.
func (s *MQTTSink) TopicFor(trajName string) string {
	return strings.ReplaceAll(s.Topic, "%s", trajName)
}

// Emit publishes the Message as JSON and waits for the broker.
func (s *MQTTSink) Emit(ctx context.Context, m *Message) error {
	js, err := json.Marshal(m)
	if err != nil {
		return err
	}
	if err = ctx.Err(); err != nil {
		return err
	}
	return wait(s.Client.Publish(s.TopicFor(m.Traj), s.QoS, s.Retain, js), s.PubTimeout)
}

// Stop disconnects from the broker.
func (s *MQTTSink) Stop(ctx context.Context) error {
	log.Printf("MQTT disconnecting")
	s.Client.Disconnect(s.Quiesce)
	return nil
}
