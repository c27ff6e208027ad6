// Package kv define o contrato do armazenamento chave-valor usado pelos
// plugins de cache e rate limit e pelas rotas /kv.
//
// Implementações:
//   - MemoryStore: mapa em memória com expiração, para desenvolvimento e testes
//   - RedisStore: github.com/redis/go-redis/v9
package kv
